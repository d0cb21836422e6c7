package tui

import (
	"cardmatch/internal/questionnaire"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuizView(t *testing.T) (QuestionnaireView, *questionnaire.Controller, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	ctrl := questionnaire.New(testConfig(t).Questions, backend, testStore(t), questionnaire.WithSession("s1"))
	t.Cleanup(ctrl.Close)
	return NewQuestionnaireView(ctrl), ctrl, backend
}

func TestQuestionnaireViewSingleSelect(t *testing.T) {
	v, ctrl, _ := newQuizView(t)

	v, _ = v.Update(keyMsg("down"))
	v, _ = v.Update(keyMsg("down"))
	assert.Equal(t, 2, v.Cursor())
	assert.Contains(t, v.View(), "Question 1 of 9")

	v, cmd := v.Update(keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, ctrl.Index())
	assert.Equal(t, 0, v.Cursor())

	ctrl.Wait()
	assert.Equal(t, "Building or rebuilding credit", ctrl.Profile().Fields["primary_goal"])
}

func TestQuestionnaireViewMultiSelectNeedsChoice(t *testing.T) {
	v, ctrl, _ := newQuizView(t)

	v, _ = v.Update(keyMsg("enter"))
	v, _ = v.Update(keyMsg("enter"))
	require.Equal(t, 2, ctrl.Index())
	require.True(t, ctrl.Current().MultiSelect)

	v, _ = v.Update(keyMsg("enter"))
	assert.Equal(t, 2, ctrl.Index())
	assert.Contains(t, v.View(), "Select at least one option.")

	v, _ = v.Update(keyMsg("space"))
	v, _ = v.Update(keyMsg("down"))
	v, _ = v.Update(keyMsg("x"))
	assert.Equal(t, []string{"Amazon", "Apple or Apple Pay"}, ctrl.Selected())
	assert.Contains(t, v.View(), "[x]")

	v, _ = v.Update(keyMsg("enter"))
	assert.Equal(t, 3, ctrl.Index())
}

func TestQuestionnaireViewFinalAnswer(t *testing.T) {
	v, ctrl, _ := newQuizView(t)

	var last FinalSubmittedMsg
	for i := 0; i < ctrl.Total(); i++ {
		if ctrl.Current().MultiSelect {
			v, _ = v.Update(keyMsg("space"))
		}
		next, c := v.Update(keyMsg("enter"))
		v = next
		if i == ctrl.Total()-1 {
			require.NotNil(t, c)
			msg, ok := c().(FinalSubmittedMsg)
			require.True(t, ok)
			last = msg
		}
	}
	require.NotNil(t, last.Pending)

	done := <-last.Pending.Done()
	require.NoError(t, done.Err)
	assert.Equal(t, sampleReply, done.Handoff.Recommendations)
}
