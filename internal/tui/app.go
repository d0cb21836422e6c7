// Package tui is the terminal front end: landing, login, questionnaire,
// loading presenters and results, switched by a guarded router.
package tui

import (
	"cardmatch/internal/auth"
	"cardmatch/internal/config"
	"cardmatch/internal/metrics"
	"cardmatch/internal/questionnaire"
	"cardmatch/internal/storage"
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Backend is the part of the API client the UI needs.
type Backend interface {
	questionnaire.Backend
	DeleteSession(ctx context.Context, sessionID string) error
}

type Deps struct {
	Config  *config.Config
	UI      config.UIConfig
	Backend Backend
	Store   storage.Store
	Auth    Authenticator
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type authResolvedMsg struct {
	user *auth.User
	err  error
}

type resultsResolvedMsg struct {
	handoff storage.Handoff
	ok      bool
	err     error
}

type resetDoneMsg struct{ to Route }

type signedOutMsg struct{ err error }

// App is the root model.
type App struct {
	deps   Deps
	logger *zap.Logger

	route      Route
	user       *auth.User
	afterLogin Route
	notice     string

	width  int
	height int

	login      Login
	startup    Startup
	quiz       QuestionnaireView
	loading    Loading
	results    Results
	ctrl       *questionnaire.Controller
	processing bool
	failed     bool
	handoff    *storage.Handoff
}

func NewApp(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewMetrics()
	}
	return &App{
		deps:   deps,
		logger: deps.Logger.Named("tui"),
		route:  RouteLanding,
		width:  80,
		height: 20,
	}
}

func (a *App) Init() tea.Cmd {
	authn := a.deps.Auth
	return func() tea.Msg {
		u, err := authn.Resolve(context.Background())
		return authResolvedMsg{user: u, err: err}
	}
}

// Route is the screen being shown.
func (a *App) Route() Route {
	return a.route
}

// Close releases the running questionnaire, if any.
func (a *App) Close() {
	if a.ctrl != nil {
		a.ctrl.Close()
		a.ctrl = nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.route == RouteResults {
			a.results = a.results.Resize(a.contentWidth(), a.contentHeight())
		}
		return a, nil

	case authResolvedMsg:
		if msg.err != nil {
			a.logger.Warn("could not resolve user", zap.Error(msg.err))
			a.notice = "Could not sign you in automatically."
		}
		a.user = msg.user
		return a, nil

	case LoginResultMsg:
		if msg.Err != nil || msg.User == nil {
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg)
			return a, cmd
		}
		a.user = msg.User
		a.notice = ""
		return a, a.navigate(a.afterLogin)

	case signedOutMsg:
		if msg.err != nil {
			a.logger.Warn("sign out failed", zap.Error(msg.err))
		}
		a.user = nil
		return a, nil

	case StartupFinishedMsg:
		if a.route != RouteQuestionnaireLoading {
			return a, nil
		}
		return a, a.beginQuestionnaire(msg.SessionID)

	case FinalSubmittedMsg:
		a.processing = true
		a.loading = NewLoading("Finding your matches", a.deps.Config.LoadingSteps.Processing,
			a.deps.UI.StepInterval, a.deps.UI.Linger, signalOf(msg.Pending))
		return a, a.loading.Init()

	case LoadingFinishedMsg:
		if !a.processing {
			return a, nil
		}
		a.processing = false
		if msg.Completion == nil || msg.Completion.Err != nil {
			a.failed = true
			return a, nil
		}
		h := msg.Completion.Handoff
		a.handoff = &h
		return a, a.navigate(RouteResults)

	case resultsResolvedMsg:
		if a.route != RouteResults {
			return a, nil
		}
		if msg.err != nil {
			a.logger.Error("could not load recommendations", zap.Error(msg.err))
		}
		if !msg.ok {
			return a, a.navigate(RouteQuestionnaire)
		}
		a.results = NewResults(msg.handoff, a.contentWidth(), a.contentHeight())
		return a, nil

	case resetDoneMsg:
		return a, a.navigate(msg.to)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)
	}

	return a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch a.route {
	case RouteLanding:
		switch key {
		case "q":
			return a, tea.Quit
		case "enter":
			return a, a.navigate(RouteQuestionnaireLoading)
		case "r":
			return a, a.navigate(RouteResults)
		case "l":
			a.afterLogin = RouteLanding
			return a, a.navigate(RouteLogin)
		case "o":
			return a, a.signOut()
		}
		return a, nil

	case RouteLogin:
		if key == "esc" {
			return a, a.navigate(RouteLanding)
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd

	case RouteQuestionnaireLoading:
		switch key {
		case "q":
			return a, tea.Quit
		case "esc":
			return a, a.navigate(RouteLanding)
		}
		var cmd tea.Cmd
		a.startup, cmd = a.startup.Update(msg)
		return a, cmd

	case RouteQuestionnaire:
		if key == "q" {
			return a, tea.Quit
		}
		if a.failed {
			switch key {
			case "r":
				return a, a.reset(RouteQuestionnaireLoading)
			case "h", "esc":
				return a, a.reset(RouteLanding)
			}
			return a, nil
		}
		if a.processing {
			return a, nil
		}
		var cmd tea.Cmd
		a.quiz, cmd = a.quiz.Update(msg)
		return a, cmd

	case RouteResults:
		switch key {
		case "q":
			return a, tea.Quit
		case "s":
			return a, a.reset(RouteQuestionnaireLoading)
		case "h":
			return a, a.reset(RouteLanding)
		}
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	}
	return a, nil
}

// forward passes presenter messages to whichever screen is active.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.route == RouteQuestionnaireLoading:
		a.startup, cmd = a.startup.Update(msg)
	case a.route == RouteQuestionnaire && a.processing:
		a.loading, cmd = a.loading.Update(msg)
	case a.route == RouteLogin:
		a.login, cmd = a.login.Update(msg)
	case a.route == RouteResults:
		a.results, cmd = a.results.Update(msg)
	}
	return a, cmd
}

func (a *App) navigate(to Route) tea.Cmd {
	route := Resolve(to, Capabilities{User: a.user})
	if route == RouteLogin && to != RouteLogin {
		a.afterLogin = to
	}
	a.logger.Debug("navigate", zap.Stringer("requested", to), zap.Stringer("route", route))
	a.route = route

	switch route {
	case RouteLogin:
		if a.afterLogin == RouteLogin {
			a.afterLogin = RouteLanding
		}
		a.login = NewLogin(a.deps.Auth)
		return a.login.Init()
	case RouteQuestionnaireLoading:
		a.startup = NewStartup(a.deps.Config.LoadingSteps.Startup, a.deps.Backend)
		return a.startup.Init()
	case RouteQuestionnaire:
		return a.beginQuestionnaire("")
	case RouteResults:
		nav := a.handoff
		a.handoff = nil
		store := a.deps.Store
		return func() tea.Msg {
			h, ok, err := ResolveResults(context.Background(), store, nav)
			return resultsResolvedMsg{handoff: h, ok: ok, err: err}
		}
	}
	return nil
}

func (a *App) beginQuestionnaire(sessionID string) tea.Cmd {
	a.Close()
	a.route = RouteQuestionnaire
	a.processing = false
	a.failed = false

	opts := []questionnaire.Option{
		questionnaire.WithLogger(a.deps.Logger),
		questionnaire.WithMetrics(a.deps.Metrics),
		questionnaire.WithDispatchDelay(a.deps.UI.DispatchDelay),
	}
	if sessionID != "" {
		opts = append(opts, questionnaire.WithSession(sessionID))
	}
	a.ctrl = questionnaire.New(a.deps.Config.Questions, a.deps.Backend, a.deps.Store, opts...)
	a.quiz = NewQuestionnaireView(a.ctrl)
	return nil
}

// reset clears stored recommendations and ends the backend session before
// moving on.
func (a *App) reset(to Route) tea.Cmd {
	sessionID := ""
	if a.ctrl != nil {
		sessionID = a.ctrl.SessionID()
	}
	a.Close()
	a.handoff = nil
	a.failed = false

	store, backend, logger := a.deps.Store, a.deps.Backend, a.logger
	return func() tea.Msg {
		ctx := context.Background()
		if err := storage.ClearHandoff(ctx, store); err != nil {
			logger.Warn("could not clear recommendations", zap.Error(err))
		}
		if sessionID != "" {
			if err := backend.DeleteSession(ctx, sessionID); err != nil {
				logger.Warn("could not delete session", zap.String("session_id", sessionID), zap.Error(err))
			}
		}
		return resetDoneMsg{to: to}
	}
}

func (a *App) signOut() tea.Cmd {
	authn := a.deps.Auth
	return func() tea.Msg {
		return signedOutMsg{err: authn.SignOut(context.Background())}
	}
}

func (a *App) View() string {
	var body string
	switch a.route {
	case RouteLanding:
		body = landingView(a.deps.Config, a.user, a.notice)
	case RouteLogin:
		body = a.login.View()
	case RouteQuestionnaireLoading:
		body = a.startup.View()
	case RouteQuestionnaire:
		switch {
		case a.failed:
			body = failureView()
		case a.processing:
			body = a.loading.View()
		case a.ctrl != nil:
			body = a.quiz.View()
		}
	case RouteResults:
		body = a.results.View()
	}
	return appStyle.Render(body)
}

func failureView() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render(questionnaire.FailureMessage))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r: try again • h: home • q: quit"))
	return b.String()
}

func (a *App) contentWidth() int {
	return max(a.width-4, 20)
}

func (a *App) contentHeight() int {
	return max(a.height-6, 5)
}
