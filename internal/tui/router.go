package tui

import "cardmatch/internal/auth"

// Route names a screen.
type Route int

const (
	RouteLanding Route = iota
	RouteLogin
	RouteQuestionnaireLoading
	RouteQuestionnaire
	RouteResults
)

func (r Route) String() string {
	switch r {
	case RouteLanding:
		return "landing"
	case RouteLogin:
		return "login"
	case RouteQuestionnaireLoading:
		return "questionnaire-loading"
	case RouteQuestionnaire:
		return "questionnaire"
	case RouteResults:
		return "results"
	default:
		return "unknown"
	}
}

// Capabilities is what guards can check before a route is entered.
type Capabilities struct {
	User *auth.User
}

// Guard returns a redirect when the route may not be entered.
type Guard func(Capabilities) (Route, bool)

func requireUser(c Capabilities) (Route, bool) {
	if c.User == nil {
		return RouteLogin, true
	}
	return 0, false
}

// guards lists every access rule. Results is unguarded here because the
// screen itself checks for recommendation data.
var guards = map[Route][]Guard{
	RouteQuestionnaireLoading: {requireUser},
	RouteQuestionnaire:        {requireUser},
}

// Resolve follows guard redirects until a route can be entered.
func Resolve(route Route, caps Capabilities) Route {
	seen := map[Route]bool{}
	for !seen[route] {
		seen[route] = true
		redirected := false
		for _, g := range guards[route] {
			if to, ok := g(caps); ok {
				route = to
				redirected = true
				break
			}
		}
		if !redirected {
			return route
		}
	}
	return route
}
