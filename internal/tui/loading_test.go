package tui

import (
	"cardmatch/internal/questionnaire"
	"cardmatch/internal/storage"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeSteps = []string{"one", "two", "three"}

func finishedMsg(t *testing.T, cmd tea.Cmd) LoadingFinishedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(LoadingFinishedMsg)
	require.True(t, ok, "expected LoadingFinishedMsg")
	return msg
}

func TestLoadingAdvancesPerTick(t *testing.T) {
	l := NewLoading("title", threeSteps, time.Millisecond, 0, nil)
	require.NotNil(t, l.Init())

	l, cmd := l.Update(loadingTickMsg{id: l.id + 100})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, l.Step())

	l, cmd = l.Update(loadingTickMsg{id: l.id})
	assert.Equal(t, 1, l.Step())
	assert.NotNil(t, cmd)
	assert.False(t, l.Finished())

	l, cmd = l.Update(loadingTickMsg{id: l.id})
	assert.Equal(t, 2, l.Step())
	assert.True(t, l.Finished())

	msg := finishedMsg(t, cmd)
	assert.Nil(t, msg.Completion)
	assert.Contains(t, l.View(), "three")
}

func TestLoadingHoldsForSignal(t *testing.T) {
	signal := make(chan questionnaire.Completion, 1)
	l := NewLoading("title", threeSteps, time.Millisecond, 0, signal)

	l, _ = l.Update(loadingTickMsg{id: l.id})
	l, cmd := l.Update(loadingTickMsg{id: l.id})
	assert.Equal(t, 2, l.Step())
	assert.Nil(t, cmd)
	assert.False(t, l.Finished())

	done := questionnaire.Completion{Handoff: storage.Handoff{Recommendations: "text"}}
	l, cmd = l.Update(completionMsg{id: l.id, completion: done})
	assert.True(t, l.Finished())

	msg := finishedMsg(t, cmd)
	require.NotNil(t, msg.Completion)
	assert.Equal(t, "text", msg.Completion.Handoff.Recommendations)
}

func TestLoadingEarlySignalWaitsForSteps(t *testing.T) {
	signal := make(chan questionnaire.Completion, 1)
	l := NewLoading("title", threeSteps, time.Millisecond, 0, signal)

	l, cmd := l.Update(completionMsg{id: l.id, completion: questionnaire.Completion{}})
	assert.Nil(t, cmd)
	assert.False(t, l.Finished())

	l, _ = l.Update(loadingTickMsg{id: l.id})
	l, cmd = l.Update(loadingTickMsg{id: l.id})
	assert.True(t, l.Finished())
	finishedMsg(t, cmd)

	// Late ticks are ignored once finished.
	_, cmd = l.Update(loadingTickMsg{id: l.id})
	assert.Nil(t, cmd)
}

func TestLoadingFailsFast(t *testing.T) {
	signal := make(chan questionnaire.Completion, 1)
	l := NewLoading("title", threeSteps, time.Hour, time.Hour, signal)

	l, cmd := l.Update(completionMsg{id: l.id, completion: questionnaire.Completion{Err: errors.New("boom")}})
	assert.True(t, l.Finished())
	assert.Equal(t, 0, l.Step())

	msg := finishedMsg(t, cmd)
	require.NotNil(t, msg.Completion)
	assert.EqualError(t, msg.Completion.Err, "boom")
}

func TestWaitForCompletionReadsChannel(t *testing.T) {
	signal := make(chan questionnaire.Completion, 1)
	signal <- questionnaire.Completion{Handoff: storage.Handoff{Recommendations: "x"}}

	msg := waitForCompletion(7, signal)().(completionMsg)
	assert.Equal(t, int64(7), msg.id)
	assert.Equal(t, "x", msg.completion.Handoff.Recommendations)
}
