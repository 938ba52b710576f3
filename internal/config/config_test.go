package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/ponder/internal/advisor"
	"github.com/Veraticus/ponder/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for _, name := range []string{"DATABASE_URL", "SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_JWT_SECRET",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PONDER_TEST_DIR", "/tmp/ponder")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/ponder.db", filepath.Join(home, "ponder.db")},
		{"$PONDER_TEST_DIR/ponder.db", "/tmp/ponder/ponder.db"},
		{"/abs/path", "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadStore(t *testing.T) {
	tests := []struct {
		settings map[string]any
		env      map[string]string
		check    func(t *testing.T, cfg Store)
		wantErr  error
		name     string
	}{
		{
			name: "defaults to sqlite",
			check: func(t *testing.T, cfg Store) {
				assert.Equal(t, BackendSQLite, cfg.Backend)
				assert.Equal(t, ExpandPath(DefaultSQLitePath), cfg.SQLitePath)
			},
		},
		{
			name:     "postgres from config",
			settings: map[string]any{"store.backend": "Postgres", "store.postgres_dsn": "postgres://localhost/ponder"},
			check: func(t *testing.T, cfg Store) {
				assert.Equal(t, BackendPostgres, cfg.Backend)
				assert.Equal(t, "postgres://localhost/ponder", cfg.Postgres.DSN)
				assert.EqualValues(t, 4, cfg.Postgres.MaxConns)
			},
		},
		{
			name:     "postgres from DATABASE_URL",
			settings: map[string]any{"store.backend": "postgres"},
			env:      map[string]string{"DATABASE_URL": "postgres://env/ponder"},
			check: func(t *testing.T, cfg Store) {
				assert.Equal(t, "postgres://env/ponder", cfg.Postgres.DSN)
			},
		},
		{
			name:     "postgres without dsn",
			settings: map[string]any{"store.backend": "postgres"},
			wantErr:  common.ErrMissingConfig,
		},
		{
			name:     "hosted from env",
			settings: map[string]any{"store.backend": "hosted", "store.hosted_table": "decisions"},
			env:      map[string]string{"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_ANON_KEY": "anon"},
			check: func(t *testing.T, cfg Store) {
				assert.Equal(t, "https://x.supabase.co", cfg.Hosted.BaseURL)
				assert.Equal(t, "anon", cfg.Hosted.AnonKey)
				assert.Equal(t, "decisions", cfg.Hosted.Table)
			},
		},
		{
			name:     "hosted without key",
			settings: map[string]any{"store.backend": "hosted", "store.hosted_url": "https://x.supabase.co"},
			wantErr:  common.ErrMissingConfig,
		},
		{
			name:     "unknown backend",
			settings: map[string]any{"store.backend": "mongo"},
			wantErr:  common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for k, v := range tt.settings {
				viper.Set(k, v)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadStore()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadAdvisor(t *testing.T) {
	tests := []struct {
		settings     map[string]any
		env          map[string]string
		wantErr      error
		name         string
		wantKey      string
		wantProv     string
		wantFallback bool
	}{
		{name: "heuristic by default", wantProv: advisor.ProviderHeuristic},
		{
			name:     "gemini key from config",
			settings: map[string]any{"advisor.provider": "gemini", "advisor.api_key": "from-config", "advisor.fallback": true},
			env:      map[string]string{"GEMINI_API_KEY": "from-env"},
			wantProv: advisor.ProviderGemini, wantKey: "from-config", wantFallback: true,
		},
		{
			name:     "openai key from env",
			settings: map[string]any{"advisor.provider": "OpenAI"},
			env:      map[string]string{"OPENAI_API_KEY": "sk-env"},
			wantProv: advisor.ProviderOpenAI, wantKey: "sk-env",
		},
		{
			name:     "anthropic without key",
			settings: map[string]any{"advisor.provider": "anthropic"},
			wantErr:  common.ErrMissingConfig,
		},
		{
			name:     "unknown provider",
			settings: map[string]any{"advisor.provider": "oracle"},
			wantErr:  common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for k, v := range tt.settings {
				viper.Set(k, v)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadAdvisor()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProv, cfg.Client.Provider)
			assert.Equal(t, tt.wantKey, cfg.Client.APIKey)
			assert.Equal(t, tt.wantFallback, cfg.Fallback)
		})
	}
}

func TestLoadAuthAndWorkflow(t *testing.T) {
	resetViper(t)
	t.Setenv("SUPABASE_JWT_SECRET", "env-secret")
	viper.Set("auth.token_path", "/tmp/ponder/session")
	viper.Set("workflow.commit_timeout", "5s")

	auth := LoadAuth()
	assert.Equal(t, "env-secret", auth.JWTSecret)
	assert.Equal(t, "/tmp/ponder/session", auth.TokenPath)

	viper.Set("auth.jwt_secret", "config-secret")
	assert.Equal(t, "config-secret", LoadAuth().JWTSecret)

	wf := LoadWorkflow()
	assert.Equal(t, 5*time.Second, wf.CommitTimeout)
	assert.Zero(t, wf.AdviceTimeout)
}
