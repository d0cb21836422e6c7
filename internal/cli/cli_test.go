package cli

import (
	"bytes"
	"cardmatch/internal/api"
	"cardmatch/internal/config"
	"cardmatch/internal/mockbackend"
	"cardmatch/internal/questionnaire"
	"cardmatch/internal/storage"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	dir     string
	backend string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	srv := httptest.NewServer(mockbackend.New(cfg.Questions, nil).Handler())
	t.Cleanup(srv.Close)

	return env{dir: dir, backend: srv.URL}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--storage-dir", filepath.Join(e.dir, "store"),
		"--log-file", filepath.Join(e.dir, "cardmatch.log"),
		"--backend-url", e.backend,
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e env) store(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewFileStore(filepath.Join(e.dir, "store"))
	require.NoError(t, err)
	return s
}

func TestResultsCommand(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "results")
	require.NoError(t, err)
	assert.Contains(t, out, "No recommendations yet")

	require.NoError(t, storage.SaveHandoff(context.Background(), e.store(t), storage.Handoff{
		Recommendations: "1. **Card A**\n- **APR:** 0%\n**Reasoning** Good fit",
	}))

	out, err = e.run(t, "results")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 Card A")
	assert.Contains(t, out, "APR: 0%")
	assert.Contains(t, out, "Why this card? Good fit")

	out, err = e.run(t, "results", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared")

	_, err = e.store(t).Get(context.Background(), storage.KeyRecommendations)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultsCommandRawFallback(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, storage.SaveHandoff(context.Background(), e.store(t), storage.Handoff{
		Recommendations: "No numbered cards here, just advice.",
	}))

	out, err := e.run(t, "results")
	require.NoError(t, err)
	assert.Contains(t, out, "just advice")
}

func TestHealthCommand(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "is healthy")

	e.backend = "http://127.0.0.1:1"
	_, err = e.run(t, "health")
	assert.Error(t, err)
}

func TestStatusCommand(t *testing.T) {
	e := newEnv(t)
	client := api.NewClient(e.backend)
	start, err := client.Start(context.Background())
	require.NoError(t, err)
	_, err = client.Chat(context.Background(), start.SessionID, "Earning cash back")
	require.NoError(t, err)

	out, err := e.run(t, "status", start.SessionID)
	require.NoError(t, err)
	assert.Contains(t, out, start.SessionID)
	assert.Contains(t, out, "top_spend_category")
	assert.Contains(t, out, "primary_goal: Earning cash back")

	_, err = e.run(t, "status", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestIdentityCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "guest")

	out, err = e.run(t, "login", "--guest")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in as guest")

	out, err = e.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	_, err = e.store(t).Get(context.Background(), storage.KeyAuthSession)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInvalidConfiguration(t *testing.T) {
	e := newEnv(t)
	e.backend = "ftp://example.com"

	_, err := e.run(t, "results")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

type scriptedAsker struct {
	picks  []int
	labels []string
}

func (s *scriptedAsker) Select(label string, items []string) (int, error) {
	if len(s.picks) == 0 {
		return 0, errors.New("script exhausted")
	}
	s.labels = append(s.labels, label)
	i := s.picks[0]
	s.picks = s.picks[1:]
	if i < 0 {
		i = len(items) - 1
	}
	return i, nil
}

func TestPlayPlainAgainstMockBackend(t *testing.T) {
	e := newEnv(t)
	cfg, err := config.Load("")
	require.NoError(t, err)

	store := e.store(t)
	ctrl := questionnaire.New(cfg.Questions, api.NewClient(e.backend), store)
	t.Cleanup(ctrl.Close)

	// Two single answers, then the multi-select: Done too early, Costco,
	// Amazon, Done. Then six more single answers.
	a := &scriptedAsker{picks: []int{0, 1, -1, 2, 0, -1, 0, 0, 0, 0, 0, 0}}
	var out bytes.Buffer

	h, err := playPlain(context.Background(), &out, ctrl, a)
	require.NoError(t, err)
	assert.True(t, h.Valid())
	assert.Contains(t, out.String(), "Select at least one option.")
	assert.Contains(t, out.String(), "Question 9 of 9")
	assert.Empty(t, a.picks)

	answers := ctrl.Answers()
	require.Len(t, answers, 9)
	assert.Equal(t, "Amazon, Costco", answers[2].Text())

	stored, err := storage.LoadHandoff(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, h.Recommendations, stored.Recommendations)

	var printed bytes.Buffer
	printResults(&printed, h, 80)
	assert.Equal(t, 3, strings.Count(printed.String(), "Why this card?"))
}
