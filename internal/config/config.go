package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/ponder/internal/advisor"
	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/hosted"
	"github.com/Veraticus/ponder/internal/storage/postgres"
	"github.com/spf13/viper"
)

// Storage backends accepted in store.backend.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendHosted   = "hosted"
)

// DefaultSQLitePath is where the local journal lives unless configured otherwise.
const DefaultSQLitePath = "~/.local/share/ponder/ponder.db"

// Store selects and configures the record store.
type Store struct {
	Backend    string
	SQLitePath string
	Hosted     hosted.Config
	Postgres   postgres.Config
}

// Advisor configures the advisory client and what to do when it fails.
type Advisor struct {
	Client   advisor.Config
	Fallback bool
}

// Auth configures session verification.
type Auth struct {
	JWTSecret string
	TokenPath string
}

// Workflow holds the engine's step timeouts.
type Workflow struct {
	AdviceTimeout time.Duration
	CommitTimeout time.Duration
}

// LoadStore loads storage configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or PONDER_ env vars)
// 2. Direct environment variables (DATABASE_URL, SUPABASE_*)
// 3. Default values
func LoadStore() (Store, error) {
	cfg := Store{
		Backend:    BackendSQLite,
		SQLitePath: DefaultSQLitePath,
	}

	if v := viper.GetString("store.backend"); v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := viper.GetString("store.sqlite_path"); v != "" {
		cfg.SQLitePath = v
	}
	cfg.SQLitePath = ExpandPath(cfg.SQLitePath)

	dsn := viper.GetString("store.postgres_dsn")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	cfg.Postgres = postgres.DefaultConfig(dsn)

	cfg.Hosted = hosted.Config{
		BaseURL: viper.GetString("store.hosted_url"),
		AnonKey: viper.GetString("store.hosted_anon_key"),
		Table:   viper.GetString("store.hosted_table"),
		Timeout: viper.GetDuration("store.hosted_timeout"),
	}
	if cfg.Hosted.BaseURL == "" {
		cfg.Hosted.BaseURL = os.Getenv("SUPABASE_URL")
	}
	if cfg.Hosted.AnonKey == "" {
		cfg.Hosted.AnonKey = os.Getenv("SUPABASE_ANON_KEY")
	}

	switch cfg.Backend {
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return Store{}, fmt.Errorf("%w: store.sqlite_path is empty", common.ErrMissingConfig)
		}
	case BackendPostgres:
		if cfg.Postgres.DSN == "" {
			return Store{}, fmt.Errorf("%w: store.postgres_dsn or DATABASE_URL is required for the postgres backend", common.ErrMissingConfig)
		}
	case BackendHosted:
		if cfg.Hosted.BaseURL == "" || cfg.Hosted.AnonKey == "" {
			return Store{}, fmt.Errorf("%w: store.hosted_url and store.hosted_anon_key are required for the hosted backend", common.ErrMissingConfig)
		}
	default:
		return Store{}, fmt.Errorf("%w: unknown store backend %q", common.ErrInvalidConfig, cfg.Backend)
	}

	return cfg, nil
}

// providerKeyEnv is the provider-specific key variable checked after advisor.api_key.
var providerKeyEnv = map[string]string{
	advisor.ProviderGemini:    "GEMINI_API_KEY",
	advisor.ProviderOpenAI:    "OPENAI_API_KEY",
	advisor.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// LoadAdvisor loads the advisory provider configuration. The heuristic
// provider is used when nothing is configured.
func LoadAdvisor() (Advisor, error) {
	cfg := Advisor{
		Client: advisor.Config{
			Provider:    advisor.ProviderHeuristic,
			Model:       viper.GetString("advisor.model"),
			BaseURL:     viper.GetString("advisor.base_url"),
			APIKey:      viper.GetString("advisor.api_key"),
			Timeout:     viper.GetDuration("advisor.timeout"),
			MaxRetries:  viper.GetInt("advisor.max_retries"),
			RetryDelay:  viper.GetDuration("advisor.retry_delay"),
			RateLimit:   viper.GetInt("advisor.rate_limit"),
			CacheTTL:    viper.GetDuration("advisor.cache_ttl"),
			Temperature: viper.GetFloat64("advisor.temperature"),
			MaxTokens:   viper.GetInt("advisor.max_tokens"),
		},
		Fallback: viper.GetBool("advisor.fallback"),
	}
	if v := viper.GetString("advisor.provider"); v != "" {
		cfg.Client.Provider = strings.ToLower(strings.TrimSpace(v))
	}

	if cfg.Client.Provider == advisor.ProviderHeuristic {
		return cfg, nil
	}

	envName, ok := providerKeyEnv[cfg.Client.Provider]
	if !ok {
		return Advisor{}, fmt.Errorf("%w: unknown advisor provider %q", common.ErrInvalidConfig, cfg.Client.Provider)
	}
	if cfg.Client.APIKey == "" {
		cfg.Client.APIKey = os.Getenv(envName)
	}
	if cfg.Client.APIKey == "" {
		return Advisor{}, fmt.Errorf("%w: %s provider needs advisor.api_key, PONDER_ADVISOR_API_KEY or %s",
			common.ErrMissingConfig, cfg.Client.Provider, envName)
	}
	return cfg, nil
}

// LoadAuth loads session settings. A missing secret is not an error here;
// only commands that verify or issue tokens require it.
func LoadAuth() Auth {
	cfg := Auth{
		JWTSecret: viper.GetString("auth.jwt_secret"),
		TokenPath: viper.GetString("auth.token_path"),
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	}
	if cfg.TokenPath != "" {
		cfg.TokenPath = ExpandPath(cfg.TokenPath)
	}
	return cfg
}

// LoadWorkflow loads the step timeouts. Zero values select the engine defaults.
func LoadWorkflow() Workflow {
	return Workflow{
		AdviceTimeout: viper.GetDuration("workflow.advice_timeout"),
		CommitTimeout: viper.GetDuration("workflow.commit_timeout"),
	}
}
