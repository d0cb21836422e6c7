package cli

import (
	"cardmatch/internal/api"
	"cardmatch/internal/mockbackend"
	"cardmatch/internal/storage"
	"cardmatch/internal/tui"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive questionnaire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTTY() {
				return errors.New("the interactive questionnaire needs a terminal; try `cardmatch ask --plain`")
			}
			if err := c.initialize(cmd); err != nil {
				return err
			}
			return c.runTUI(cmd.Context())
		},
	}
}

func (c *CLI) runTUI(ctx context.Context) error {
	app := tui.NewApp(tui.Deps{
		Config:  c.questions,
		UI:      c.cfg.UI,
		Backend: c.client,
		Store:   c.store,
		Auth:    c.auth,
		Logger:  c.logger,
		Metrics: c.metrics,
	})
	defer app.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if ctx != nil {
		opts = append(opts, tea.WithContext(ctx))
	}
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}

func newAskCommand(c *CLI) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer the questionnaire with simple prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			if !plain && isTTY() {
				return c.runTUI(cmd.Context())
			}
			return c.runPlain(cmd.Context(), cmd.OutOrStdout(), promptuiAsker{})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "use line prompts instead of the full-screen interface")
	return cmd
}

func newResultsCommand(c *CLI) *cobra.Command {
	var clearSaved bool
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the last recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if clearSaved {
				if err := storage.ClearHandoff(cmd.Context(), c.store); err != nil {
					return err
				}
				fmt.Fprintln(out, green("Cleared saved recommendations."))
				return nil
			}

			h, err := storage.LoadHandoff(cmd.Context(), c.store)
			if err != nil {
				return err
			}
			if !h.Valid() {
				fmt.Fprintln(out, yellow("No recommendations yet. Run `cardmatch` to take the questionnaire."))
				return nil
			}
			printResults(out, h, 80)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearSaved, "clear", false, "delete the saved recommendations")
	return cmd
}

func newHealthCommand(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := c.client.Health(cmd.Context()); err != nil {
				fmt.Fprintf(out, "%s %s: %v\n", red("✗"), c.cfg.Backend.URL, err)
				return err
			}
			fmt.Fprintf(out, "%s %s is healthy\n", green("✓"), c.cfg.Backend.URL)
			return nil
		},
	}
}

func newStatusCommand(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show a backend conversation's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			st, err := c.client.Status(cmd.Context(), args[0])
			if err != nil {
				var httpErr *api.HTTPError
				if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
					return fmt.Errorf("session %s not found", args[0])
				}
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newLoginCommand(c *CLI) *cobra.Command {
	var signup, guest bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or as a guest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if guest {
				u, err := c.auth.SignInAnonymously(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s signed in as %s\n", green("✓"), u.DisplayName())
				return nil
			}

			email, err := (&promptui.Prompt{Label: "Email"}).Run()
			if err != nil {
				return err
			}
			password, err := (&promptui.Prompt{Label: "Password", Mask: '*'}).Run()
			if err != nil {
				return err
			}

			signIn := c.auth.SignIn
			if signup {
				signIn = c.auth.SignUp
			}
			u, err := signIn(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s signed in as %s\n", green("✓"), u.DisplayName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&signup, "signup", false, "create a new account")
	cmd.Flags().BoolVar(&guest, "guest", false, "continue without an account")
	return cmd
}

func newLogoutCommand(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			if err := c.auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("Signed out."))
			return nil
		},
	}
}

func newWhoamiCommand(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			u, err := c.auth.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			kind := "account"
			if u.Anonymous {
				kind = "guest"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", u.DisplayName(), gray("("+kind+", id "+u.ID+")"))
			return nil
		},
	}
}

func newMockBackendCommand(c *CLI) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve canned backend responses for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initialize(cmd); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "%s mock backend on %s\n", cyan("→"), addr)
			srv := mockbackend.New(c.questions.Questions, c.logger)
			if err := srv.Run(ctx, addr); err != nil {
				c.logger.Error("mock backend failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	return cmd
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
