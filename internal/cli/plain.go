package cli

import (
	"cardmatch/internal/questionnaire"
	"cardmatch/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
)

const doneItem = "Done"

// asker picks one item from a list.
type asker interface {
	Select(label string, items []string) (int, error)
}

type promptuiAsker struct{}

func (promptuiAsker) Select(label string, items []string) (int, error) {
	p := promptui.Select{Label: label, Items: items, Size: len(items)}
	i, _, err := p.Run()
	return i, err
}

func (c *CLI) runPlain(ctx context.Context, w io.Writer, a asker) error {
	if _, err := c.auth.Resolve(ctx); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	ctrl := questionnaire.New(c.questions.Questions, c.client, c.store,
		questionnaire.WithLogger(c.logger),
		questionnaire.WithMetrics(c.metrics),
		questionnaire.WithDispatchDelay(c.cfg.UI.DispatchDelay),
	)
	defer ctrl.Close()

	h, err := playPlain(ctx, w, ctrl, a)
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return nil
		}
		return err
	}
	fmt.Fprintln(w)
	printResults(w, h, 80)
	return nil
}

// playPlain asks every question through a and waits for the
// recommendations.
func playPlain(ctx context.Context, w io.Writer, ctrl *questionnaire.Controller, a asker) (storage.Handoff, error) {
	var pending *questionnaire.Pending
	for ctrl.State() == questionnaire.StateAsking {
		q := ctrl.Current()
		fmt.Fprintln(w, gray(fmt.Sprintf("Question %d of %d", ctrl.Index()+1, ctrl.Total())))

		var err error
		if q.MultiSelect {
			pending, err = askMulti(w, ctrl, a)
		} else {
			pending, err = askSingle(ctrl, a)
		}
		if err != nil {
			return storage.Handoff{}, err
		}
	}
	if pending == nil {
		return storage.Handoff{}, questionnaire.ErrNotAsking
	}

	fmt.Fprintln(w, cyan("Finding your matches..."))
	select {
	case done := <-pending.Done():
		if done.Err != nil {
			fmt.Fprintln(w, red(questionnaire.FailureMessage))
			return storage.Handoff{}, done.Err
		}
		return done.Handoff, nil
	case <-ctx.Done():
		return storage.Handoff{}, ctx.Err()
	}
}

func askSingle(ctrl *questionnaire.Controller, a asker) (*questionnaire.Pending, error) {
	q := ctrl.Current()
	i, err := a.Select(q.Prompt, q.Options)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Toggle(q.Options[i]); err != nil {
		return nil, err
	}
	return ctrl.Submit()
}

func askMulti(w io.Writer, ctrl *questionnaire.Controller, a asker) (*questionnaire.Pending, error) {
	q := ctrl.Current()
	for {
		selected := make(map[string]bool)
		for _, s := range ctrl.Selected() {
			selected[s] = true
		}
		items := make([]string, 0, len(q.Options)+1)
		for _, o := range q.Options {
			mark := "[ ] "
			if selected[o] {
				mark = "[x] "
			}
			items = append(items, mark+o)
		}
		items = append(items, doneItem)

		i, err := a.Select(q.Prompt+" (select all that apply)", items)
		if err != nil {
			return nil, err
		}
		if i < len(q.Options) {
			if err := ctrl.Toggle(q.Options[i]); err != nil {
				return nil, err
			}
			continue
		}

		pending, err := ctrl.Submit()
		if errors.Is(err, questionnaire.ErrNoSelection) {
			fmt.Fprintln(w, yellow("Select at least one option."))
			continue
		}
		return pending, err
	}
}
