package tui

import (
	"cardmatch/internal/auth"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoutes(t *testing.T) {
	user := &auth.User{ID: "u1", Anonymous: true}

	tests := []struct {
		name string
		to   Route
		user *auth.User
		want Route
	}{
		{"landing is open", RouteLanding, nil, RouteLanding},
		{"login is open", RouteLogin, nil, RouteLogin},
		{"loading needs user", RouteQuestionnaireLoading, nil, RouteLogin},
		{"questionnaire needs user", RouteQuestionnaire, nil, RouteLogin},
		{"results checks data itself", RouteResults, nil, RouteResults},
		{"loading with user", RouteQuestionnaireLoading, user, RouteQuestionnaireLoading},
		{"questionnaire with user", RouteQuestionnaire, user, RouteQuestionnaire},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.to, Capabilities{User: tt.user}))
		})
	}
}

func TestRouteNames(t *testing.T) {
	assert.Equal(t, "questionnaire-loading", RouteQuestionnaireLoading.String())
	assert.Equal(t, "unknown", Route(99).String())
}
