package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv registers every config key with t.Setenv so tests cannot leak
// values into each other, then unsets them for a clean slate.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"BRAINSTEM_BASE_URL", "BRAINSTEM_TOKEN", "BRAINSTEM_PAGE_SIZE",
		"BRAINSTEM_TIMEOUT", "BRAINSTEM_LOG_LEVEL", "BRAINSTEM_LOG_FORMAT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Flags{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:41184", cfg.Joplin.BaseURL)
	assert.Empty(t, cfg.Joplin.Token)
	assert.Equal(t, 100, cfg.Joplin.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Joplin.Timeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "pretty", cfg.Logger.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRAINSTEM_BASE_URL", "http://10.0.0.5:41184")
	t.Setenv("BRAINSTEM_TOKEN", "env-token")
	t.Setenv("BRAINSTEM_PAGE_SIZE", "25")
	t.Setenv("BRAINSTEM_TIMEOUT", "5s")
	t.Setenv("BRAINSTEM_LOG_LEVEL", "debug")

	cfg, err := Load(Flags{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:41184", cfg.Joplin.BaseURL)
	assert.Equal(t, "env-token", cfg.Joplin.Token)
	assert.Equal(t, 25, cfg.Joplin.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Joplin.Timeout)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRAINSTEM_TOKEN", "env-token")
	t.Setenv("BRAINSTEM_PAGE_SIZE", "25")

	cfg, err := Load(Flags{
		Token:    "flag-token",
		PageSize: "10",
		EnvFile:  filepath.Join(t.TempDir(), "missing.env"),
	})
	require.NoError(t, err)

	assert.Equal(t, "flag-token", cfg.Joplin.Token)
	assert.Equal(t, 10, cfg.Joplin.PageSize)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := `# brainstem settings
BRAINSTEM_TOKEN="file-token"
BRAINSTEM_LOG_LEVEL=warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(Flags{EnvFile: path})
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Joplin.Token)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestEnvironmentBeatsEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRAINSTEM_TOKEN", "env-token")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BRAINSTEM_TOKEN=file-token\n"), 0o600))

	cfg, err := Load(Flags{EnvFile: path})
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Joplin.Token)
}

func TestLoadRejectsMalformedEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT A VALID LINE\n"), 0o600))

	_, err := Load(Flags{EnvFile: path})
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)

	_, err := Load(Flags{
		Timeout: "thirty",
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
	})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Joplin: JoplinConfig{
			BaseURL:  "http://localhost:41184",
			PageSize: 100,
			Timeout:  30 * time.Second,
		},
		Logger: LoggerConfig{Level: "info"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.Joplin.BaseURL = "" },
			wantErr: "base URL is required",
		},
		{
			name:    "base URL without scheme",
			mutate:  func(c *Config) { c.Joplin.BaseURL = "localhost:41184" },
			wantErr: "must start with http",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.Joplin.PageSize = 0 },
			wantErr: "page size must be positive",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Joplin.Timeout = -time.Second },
			wantErr: "timeout must be positive",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logger.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
