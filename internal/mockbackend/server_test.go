package mockbackend

import (
	"cardmatch/internal/api"
	"cardmatch/internal/config"
	parser "cardmatch/internal/recommend"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T) (*Server, *api.Client, []config.Question) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	srv := New(cfg.Questions, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, api.NewClient(ts.URL), cfg.Questions
}

func TestConversationFlow(t *testing.T) {
	ctx := context.Background()
	srv, client, questions := newTestClient(t)

	require.NoError(t, client.Health(ctx))

	start, err := client.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, start.SessionID)
	assert.Equal(t, questions[0].Prompt, start.InitialQuestion)
	assert.Equal(t, 1, srv.SessionCount())

	profile := map[string]string{"session_id": start.SessionID}
	for i, q := range questions {
		resp, err := client.Chat(ctx, start.SessionID, q.Options[0])
		require.NoError(t, err)
		assert.Equal(t, i == len(questions)-1, resp.IsComplete)
		profile[q.ID] = q.Options[0]
	}

	status, err := client.Status(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Nil(t, status.CurrentQuestion)
	assert.Len(t, status.ConversationHistory, 2*len(questions))

	res, err := client.SubmitProfile(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, start.SessionID, res.SessionID)
	assert.True(t, res.IsComplete)
	assert.Len(t, res.StructuredCards, 3)
	assert.EqualValues(t, len(questions), res.ConversationSummary["questions_completed"])

	cards := parser.Parse(res.Response)
	require.Len(t, cards, 3)
	var names []string
	for _, card := range cards {
		names = append(names, card.Name)
		assert.Len(t, card.Details, 4)
		assert.NotEmpty(t, card.Reasoning)
	}
	assert.Contains(t, names, "Chase Sapphire Preferred")

	require.NoError(t, client.DeleteSession(ctx, start.SessionID))
	assert.Equal(t, 0, srv.SessionCount())
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	_, client, _ := newTestClient(t)

	var httpErr *api.HTTPError

	_, err := client.Chat(ctx, "missing", "hello")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)

	_, err = client.Status(ctx, "missing")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)

	err = client.DeleteSession(ctx, "missing")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestSubmitProfileCreatesSession(t *testing.T) {
	srv, client, _ := newTestClient(t)

	res, err := client.SubmitProfile(context.Background(), map[string]string{
		"primary_goal":     "Building or rebuilding credit",
		"credit_situation": "I'm a student with little or no credit history",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, 1, srv.SessionCount())

	cards := parser.Parse(res.Response)
	require.NotEmpty(t, cards)
	assert.Equal(t, "Discover it Secured", cards[0].Name)
}

func TestRecommendPrefersBrands(t *testing.T) {
	cards := recommend(map[string]string{
		"primary_goal":      "Earning benefits with a specific brand/store (e.g. Amazon, Apple, Costco)",
		"brand_preferences": "Costco",
	})
	require.Len(t, cards, 3)
	assert.Equal(t, "Costco Anywhere Visa", cards[0].Name)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.Run(ctx, "127.0.0.1:0"))
}
