package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CARDMATCH_BACKEND_URL.
const EnvPrefix = "CARDMATCH"

type AppConfig struct {
	Backend       BackendConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Log           LogConfig
	UI            UIConfig
	QuestionsFile string
}

type AuthConfig struct {
	APIKey        string
	Endpoint      string
	TokenEndpoint string
}

type StorageConfig struct {
	Driver   string
	Dir      string
	RedisURL string
	Prefix   string
}

type LogConfig struct {
	Level    string
	Encoding string
	File     string
}

// UIConfig holds the presenter timings.
type UIConfig struct {
	StepInterval  time.Duration
	Linger        time.Duration
	DispatchDelay time.Duration
}

// NewViper returns a viper instance with defaults, the optional config file
// and environment overrides wired up. A .env file in the working directory
// is loaded first when present.
func NewViper(configFile string) (*viper.Viper, error) {
	// .env is optional here, unlike a server deployment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cardmatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultHome())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func SetDefaults(v *viper.Viper) {
	home := DefaultHome()

	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout", time.Duration(0))
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.endpoint", "")
	v.SetDefault("auth.token_endpoint", "")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", home)
	v.SetDefault("storage.redis_url", "redis://localhost:6379/0")
	v.SetDefault("storage.prefix", "cardmatch")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.file", filepath.Join(home, "cardmatch.log"))
	v.SetDefault("ui.step_interval", 1200*time.Millisecond)
	v.SetDefault("ui.linger", 1500*time.Millisecond)
	v.SetDefault("ui.dispatch_delay", 100*time.Millisecond)
	v.SetDefault("questions", "")
}

// LoadAppConfig reads the resolved settings out of v.
func LoadAppConfig(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Backend: BackendConfig{
			URL:     v.GetString("backend.url"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Auth: AuthConfig{
			APIKey:        v.GetString("auth.api_key"),
			Endpoint:      v.GetString("auth.endpoint"),
			TokenEndpoint: v.GetString("auth.token_endpoint"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(v.GetString("storage.driver")),
			Dir:      v.GetString("storage.dir"),
			RedisURL: v.GetString("storage.redis_url"),
			Prefix:   v.GetString("storage.prefix"),
		},
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Encoding: v.GetString("log.encoding"),
			File:     v.GetString("log.file"),
		},
		UI: UIConfig{
			StepInterval:  v.GetDuration("ui.step_interval"),
			Linger:        v.GetDuration("ui.linger"),
			DispatchDelay: v.GetDuration("ui.dispatch_delay"),
		},
		QuestionsFile: v.GetString("questions"),
	}

	if err := cfg.Backend.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Storage.Driver {
	case "file", "redis":
	default:
		return nil, fmt.Errorf("storage.driver must be file or redis, got %q", cfg.Storage.Driver)
	}

	if cfg.UI.StepInterval <= 0 {
		return nil, fmt.Errorf("ui.step_interval must be positive")
	}

	return cfg, nil
}

// DefaultHome is the per-user state directory.
func DefaultHome() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".cardmatch")
	}
	return ".cardmatch"
}
