// Package mockbackend serves canned recommendation-backend responses for
// local development and tests. It keeps sessions in memory and never calls
// out to a model.
package mockbackend

import (
	"cardmatch/internal/api"
	"cardmatch/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type session struct {
	next    int
	profile map[string]string
	history []map[string]any
}

// Server answers the backend endpoints the client uses.
type Server struct {
	questions []config.Question
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func New(questions []config.Question, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		questions: questions,
		logger:    logger.Named("mockbackend"),
		sessions:  make(map[string]*session),
	}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(requestLogger(s.logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", api.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/", s.root)
	router.GET("/health", s.health)
	router.POST("/start", s.start)
	router.POST("/chat", s.chat)
	router.POST("/submit-profile", s.submitProfile)
	router.GET("/status/:session_id", s.status)
	router.DELETE("/session/:session_id", s.deleteSession)
	return router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mock backend listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("mock backend stopped")
	return nil
}

// SessionCount reports how many sessions are open.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Credit Card Recommendation API (mock)",
		"version": "1.0.0",
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"components": gin.H{
			"conversation_manager": "ok",
			"card_catalog":         fmt.Sprintf("%d cards", len(catalog)),
		},
	})
}

func (s *Server) start(c *gin.Context) {
	id, _ := s.newSession()
	prompt := s.prompt(0)
	c.JSON(http.StatusOK, api.StartResponse{SessionID: id, InitialQuestion: prompt, Message: prompt})
}

func (s *Server) chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[req.SessionID]
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}

	sess.history = append(sess.history, map[string]any{"role": "user", "content": req.Message})
	if sess.next < len(s.questions) {
		sess.profile[s.questions[sess.next].ID] = req.Message
		sess.next++
	}
	complete := sess.next >= len(s.questions)
	reply := "Thanks, I have everything I need."
	if !complete {
		reply = "Got it. " + s.prompt(sess.next)
	}
	sess.history = append(sess.history, map[string]any{"role": "assistant", "content": reply})
	s.mu.Unlock()

	c.JSON(http.StatusOK, api.ChatResponse{Response: reply, SessionID: req.SessionID, IsComplete: complete})
}

func (s *Server) submitProfile(c *gin.Context) {
	var profile map[string]string
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	id := profile["session_id"]
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		id, sess = s.newSession()
		s.mu.Lock()
	}
	for _, q := range s.questions {
		sess.profile[q.ID] = profile[q.ID]
	}
	sess.next = len(s.questions)
	summary := s.summary(sess)
	s.mu.Unlock()

	cards := recommend(profile)
	c.JSON(http.StatusOK, api.SubmitProfileResponse{
		Response:            renderCards(cards),
		SessionID:           id,
		IsComplete:          true,
		ConversationSummary: summary,
		StructuredCards:     structured(cards),
	})
}

func (s *Server) status(c *gin.Context) {
	id := c.Param("session_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}

	var current *string
	if sess.next < len(s.questions) {
		field := s.questions[sess.next].ID
		current = &field
	}
	c.JSON(http.StatusOK, api.StatusResponse{
		SessionID:           id,
		Status:              s.summary(sess),
		CurrentQuestion:     current,
		ConversationHistory: append([]map[string]any{}, sess.history...),
	})
}

func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("session_id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (s *Server) newSession() (string, *session) {
	id := uuid.NewString()
	sess := &session{profile: make(map[string]string, len(s.questions))}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session_id", id))
	return id, sess
}

func (s *Server) prompt(i int) string {
	if i >= len(s.questions) {
		return ""
	}
	return s.questions[i].Prompt
}

// summary must be called with s.mu held.
func (s *Server) summary(sess *session) map[string]any {
	profile := make(map[string]any, len(sess.profile))
	for k, v := range sess.profile {
		profile[k] = v
	}
	return map[string]any{
		"questions_completed": sess.next,
		"total_questions":     len(s.questions),
		"is_complete":         sess.next >= len(s.questions),
		"user_profile":        profile,
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zapcore.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetHeader(api.RequestIDHeader)),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request handled", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request handled", fields...)
		default:
			logger.Info("request handled", fields...)
		}
	}
}
