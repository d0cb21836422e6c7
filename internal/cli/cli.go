// Package cli wires configuration, storage, the backend client and the
// identity provider into the cardmatch commands.
package cli

import (
	"cardmatch/internal/api"
	"cardmatch/internal/auth"
	"cardmatch/internal/config"
	"cardmatch/internal/logger"
	"cardmatch/internal/metrics"
	"cardmatch/internal/storage"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// CLI holds what the commands share once initialized.
type CLI struct {
	configFile string

	v         *viper.Viper
	cfg       *config.AppConfig
	questions *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	store     storage.Store
	client    *api.Client
	auth      *auth.Provider
}

// flagKeys maps persistent flags to their config keys.
var flagKeys = map[string]string{
	"backend-url":    "backend.url",
	"storage-driver": "storage.driver",
	"storage-dir":    "storage.dir",
	"log-level":      "log.level",
	"log-file":       "log.file",
	"questions":      "questions",
}

// initialize loads configuration and opens the shared resources.
func (c *CLI) initialize(cmd *cobra.Command) error {
	v, err := config.NewViper(c.configFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	c.v = v

	cfg, err := config.LoadAppConfig(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg

	c.logger, err = logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Encoding:   cfg.Log.Encoding,
		OutputPath: cfg.Log.File,
	})
	if err != nil {
		return err
	}

	c.questions, err = config.Load(cfg.QuestionsFile)
	if err != nil {
		return err
	}

	c.metrics = metrics.NewMetrics()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.store, err = storage.Open(ctx, cfg.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	c.client = api.NewClient(cfg.Backend.URL,
		api.WithTimeout(cfg.Backend.Timeout),
		api.WithLogger(c.logger),
		api.WithMetrics(c.metrics),
	)

	identity, err := c.identity(ctx)
	if err != nil {
		return err
	}
	c.auth = auth.NewProvider(identity, c.store, c.logger)

	c.logger.Debug("initialized",
		zap.Any("backend", cfg.Backend.GetInfo()),
		zap.String("storage", cfg.Storage.Driver))
	return nil
}

func (c *CLI) identity(ctx context.Context) (auth.IdentityProvider, error) {
	if c.cfg.Auth.APIKey == "" {
		return auth.LocalIdentity{}, nil
	}
	return auth.NewIdentityToolkit(ctx, c.cfg.Auth.APIKey, c.cfg.Auth.Endpoint, c.cfg.Auth.TokenEndpoint)
}

// shutdown logs the session counters and releases resources.
func (c *CLI) shutdown() {
	if c.logger == nil {
		return
	}
	if c.metrics != nil {
		c.logger.Info("session metrics", c.metrics.GetSnapshot().Fields()...)
	}
	if closer, ok := c.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.Warn("close storage", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}

// NewRootCommand builds the cardmatch command tree.
func NewRootCommand() *cobra.Command {
	c := &CLI{}

	root := &cobra.Command{
		Use:   "cardmatch",
		Short: "Find the credit card that fits you",
		Long: fmt.Sprintf(`%s

Answer nine quick questions and get credit card recommendations from the
CardMatch backend.

%s
  cardmatch                      # interactive questionnaire
  cardmatch ask --plain          # line-by-line prompts
  cardmatch results              # show the last recommendations
  cardmatch health               # check the backend
  cardmatch mock-backend         # run a local canned backend`,
			bold("CardMatch AI"), bold("EXAMPLES:")),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTTY() {
				return cmd.Help()
			}
			if err := c.initialize(cmd); err != nil {
				return err
			}
			return c.runTUI(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.shutdown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "config file (default ./cardmatch.yaml or ~/.cardmatch/cardmatch.yaml)")
	flags.String("backend-url", "", "recommendation backend base URL")
	flags.String("storage-driver", "", "where results are kept: file or redis")
	flags.String("storage-dir", "", "directory for the file store")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-file", "", "log file path")
	flags.String("questions", "", "question set YAML file")

	root.AddCommand(
		newRunCommand(c),
		newAskCommand(c),
		newResultsCommand(c),
		newHealthCommand(c),
		newStatusCommand(c),
		newLoginCommand(c),
		newLogoutCommand(c),
		newWhoamiCommand(c),
		newMockBackendCommand(c),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
