package questionnaire

import (
	"cardmatch/internal/api"
	"cardmatch/internal/config"
	"cardmatch/internal/metrics"
	"cardmatch/internal/storage"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backend is the part of the API client the controller needs.
type Backend interface {
	Start(ctx context.Context) (*api.StartResponse, error)
	Chat(ctx context.Context, sessionID, message string) (*api.ChatResponse, error)
	SubmitProfile(ctx context.Context, profile map[string]string) (*api.SubmitProfileResponse, error)
}

type Option func(*Controller)

// WithSession reuses a session opened before the questionnaire started.
func WithSession(id string) Option {
	return func(c *Controller) { c.sessionID = id }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l.Named("questionnaire") }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithDispatchDelay pauses before every backend exchange.
func WithDispatchDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

type job struct {
	answer  Answer
	final   bool
	pending *Pending
}

// Controller walks the user through the question set. Answers are accepted
// synchronously while their backend exchanges run in order on a single
// dispatcher goroutine.
type Controller struct {
	questions []config.Question
	backend   Backend
	store     storage.Store
	logger    *zap.Logger
	metrics   *metrics.Metrics
	delay     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	jobs   chan job
	queued sync.WaitGroup
	done   chan struct{}

	mu        sync.Mutex
	state     State
	closed    bool
	index     int
	selected  []string
	answers   []Answer
	turns     []Turn
	sessionID string
	profile   Profile
}

// New starts a fresh questionnaire. Recommendations left over from an
// earlier run are cleared from the store.
func New(questions []config.Question, backend Backend, store storage.Store, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	fields := make([]string, len(questions))
	for i, q := range questions {
		fields[i] = q.ID
	}

	c := &Controller{
		questions: questions,
		backend:   backend,
		store:     store,
		logger:    zap.NewNop(),
		metrics:   metrics.NewMetrics(),
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(chan job, len(questions)),
		done:      make(chan struct{}),
		profile:   newProfile(fields),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.profile.SessionID = c.sessionID

	if err := storage.ClearHandoff(ctx, store); err != nil {
		c.logger.Warn("failed to clear previous recommendations", zap.Error(err))
	}
	c.metrics.IncrementQuestionnairesStarted()

	go c.dispatch()
	return c
}

// Current returns the question being asked.
func (c *Controller) Current() config.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.questions[c.index]
}

func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Controller) Total() int {
	return len(c.questions)
}

// Progress is (index+1)/total.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.index+1) / float64(len(c.questions))
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Selected returns the current selection in option order.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderedSelection()
}

// Toggle selects an option. Multi-select questions flip membership,
// single-select questions replace the selection.
func (c *Controller) Toggle(option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.state != StateAsking {
		return ErrNotAsking
	}

	q := c.questions[c.index]
	if !q.HasOption(option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	if !q.MultiSelect {
		c.selected = []string{option}
		return nil
	}

	for i, s := range c.selected {
		if s == option {
			c.selected = append(c.selected[:i], c.selected[i+1:]...)
			return nil
		}
	}
	c.selected = append(c.selected, option)
	return nil
}

// Submit records the selection for the current question. Non-final answers
// advance immediately and return a nil Pending. The final answer moves the
// controller to StateFinishing and returns the Pending that completes once
// recommendations are stored.
func (c *Controller) Submit() (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.state != StateAsking {
		return nil, ErrNotAsking
	}
	if len(c.selected) == 0 {
		return nil, ErrNoSelection
	}

	q := c.questions[c.index]
	answer := Answer{Field: q.ID, Values: c.orderedSelection()}
	c.answers = append(c.answers, answer)
	c.turns = append(c.turns, Turn{Role: RoleUser, Content: answer.Text(), Field: q.ID})
	c.selected = nil
	c.metrics.IncrementAnswersSubmitted()

	j := job{answer: answer}
	if c.index == len(c.questions)-1 {
		c.state = StateFinishing
		j.final = true
		j.pending = &Pending{done: make(chan Completion, 1)}
	} else {
		c.index++
	}

	// jobs holds one slot per question, so this never blocks.
	c.queued.Add(1)
	c.jobs <- j
	return j.pending, nil
}

// Turns returns a copy of the conversation log.
func (c *Controller) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.turns...)
}

// Answers returns a copy of the recorded answers.
func (c *Controller) Answers() []Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Answer(nil), c.answers...)
}

// Profile returns the fields the backend has acknowledged so far.
func (c *Controller) Profile() Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.clone()
}

// Wait blocks until every queued exchange has finished.
func (c *Controller) Wait() {
	c.queued.Wait()
}

// Close stops the dispatcher and cancels in-flight requests. Results that
// arrive afterwards are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	close(c.jobs)
	c.mu.Unlock()

	<-c.done
}

func (c *Controller) orderedSelection() []string {
	q := c.questions[c.index]
	out := make([]string, 0, len(c.selected))
	for _, o := range q.Options {
		for _, s := range c.selected {
			if s == o {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

func (c *Controller) dispatch() {
	defer close(c.done)
	for j := range c.jobs {
		c.process(j)
		c.queued.Done()
	}
}

func (c *Controller) process(j job) {
	logger := c.logger.With(zap.String("field", j.answer.Field), zap.Bool("final", j.final))

	err := c.exchange(j.answer)
	if !j.final {
		if err != nil {
			c.metrics.IncrementBackgroundFailures()
			logger.Warn("background exchange failed", zap.Error(err))
		}
		return
	}

	var handoff storage.Handoff
	if err == nil {
		handoff, err = c.finish()
	}

	c.mu.Lock()
	if !c.closed {
		if err != nil {
			c.state = StateFailed
		} else {
			c.state = StateComplete
		}
	}
	c.mu.Unlock()

	if err != nil {
		logger.Error("final exchange failed", zap.Error(err))
		j.pending.complete(Completion{Err: err})
		return
	}
	c.metrics.IncrementQuestionnairesCompleted()
	logger.Info("recommendations received", zap.Int("length", len(handoff.Recommendations)))
	j.pending.complete(Completion{Handoff: handoff})
}

// exchange sends one answer, opening the session first when needed.
func (c *Controller) exchange(answer Answer) error {
	if err := c.pause(); err != nil {
		return err
	}

	sessionID, err := c.ensureSession()
	if err != nil {
		return err
	}

	resp, err := c.backend.Chat(c.ctx, sessionID, answer.Text())
	if err != nil {
		return fmt.Errorf("send answer for %s: %w", answer.Field, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: resp.Response, Field: answer.Field})
	c.profile.Fields[answer.Field] = answer.Text()
	if resp.IsComplete {
		c.logger.Debug("backend reports conversation complete", zap.String("field", answer.Field))
	}
	return nil
}

// finish submits the whole profile and persists the reply. The submitted
// profile is built from every recorded answer, so a background exchange
// that failed earlier does not blank its field.
func (c *Controller) finish() (storage.Handoff, error) {
	c.mu.Lock()
	submission := c.profile.clone()
	for _, a := range c.answers {
		submission.Fields[a.Field] = a.Text()
	}
	c.mu.Unlock()

	resp, err := c.backend.SubmitProfile(c.ctx, submission.Payload())
	if err != nil {
		return storage.Handoff{}, fmt.Errorf("submit profile: %w", err)
	}

	handoff := storage.Handoff{Recommendations: resp.Response, Summary: resp.ConversationSummary}
	if err := storage.SaveHandoff(c.ctx, c.store, handoff); err != nil {
		return storage.Handoff{}, fmt.Errorf("store recommendations: %w", err)
	}
	c.metrics.IncrementRecommendationsReceived()
	return handoff, nil
}

func (c *Controller) ensureSession() (string, error) {
	c.mu.Lock()
	id := c.sessionID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	resp, err := c.backend.Start(c.ctx)
	if err != nil {
		return "", fmt.Errorf("start conversation: %w", err)
	}
	if resp.SessionID == "" {
		return "", errors.New("start conversation: empty session id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrClosed
	}
	c.sessionID = resp.SessionID
	c.profile.SessionID = resp.SessionID
	c.logger.Info("conversation started", zap.String("session_id", resp.SessionID))
	return resp.SessionID, nil
}

func (c *Controller) pause() error {
	if c.delay <= 0 {
		return c.ctx.Err()
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}
