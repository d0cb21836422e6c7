package metrics

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Metrics struct {
	mu                      sync.RWMutex
	QuestionnairesStarted   int64
	QuestionnairesCompleted int64
	AnswersSubmitted        int64
	RecommendationsReceived int64
	BackgroundFailures      int64
	APICallsTotal           int64
	APICallsSuccessful      int64
	LastUpdateTime          time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementQuestionnairesStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuestionnairesStarted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionnairesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuestionnairesCompleted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAnswersSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnswersSubmitted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementRecommendationsReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecommendationsReceived++
	m.LastUpdateTime = time.Now()
}

// IncrementBackgroundFailures counts backend failures that were logged but
// not shown to the user.
func (m *Metrics) IncrementBackgroundFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackgroundFailures++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICallsTotal++
	if success {
		m.APICallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	QuestionnairesStarted   int64
	QuestionnairesCompleted int64
	AnswersSubmitted        int64
	RecommendationsReceived int64
	BackgroundFailures      int64
	APICallsTotal           int64
	APICallsSuccessful      int64
	LastUpdateTime          time.Time
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		QuestionnairesStarted:   m.QuestionnairesStarted,
		QuestionnairesCompleted: m.QuestionnairesCompleted,
		AnswersSubmitted:        m.AnswersSubmitted,
		RecommendationsReceived: m.RecommendationsReceived,
		BackgroundFailures:      m.BackgroundFailures,
		APICallsTotal:           m.APICallsTotal,
		APICallsSuccessful:      m.APICallsSuccessful,
		LastUpdateTime:          m.LastUpdateTime,
	}
}

// Fields renders the snapshot as zap fields for the exit log line.
func (s Snapshot) Fields() []zap.Field {
	return []zap.Field{
		zap.Int64("questionnaires_started", s.QuestionnairesStarted),
		zap.Int64("questionnaires_completed", s.QuestionnairesCompleted),
		zap.Int64("answers_submitted", s.AnswersSubmitted),
		zap.Int64("recommendations_received", s.RecommendationsReceived),
		zap.Int64("background_failures", s.BackgroundFailures),
		zap.Int64("api_calls_total", s.APICallsTotal),
		zap.Int64("api_calls_successful", s.APICallsSuccessful),
	}
}
