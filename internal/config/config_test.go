// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
app:
  name: Board Test
database:
  url: postgres://file/db
redis:
  url: redis://file:6379/0
activity:
  retention_days: 30
`)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("REDIS_URL", "redis://env:6379/0")
	t.Setenv("INVITATION_EXPIRY", "48h")

	c, err := load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "Board Test", c.App.Name)
	assert.Equal(t, "postgres://env/db", c.Database.URL)
	assert.Equal(t, "redis://env:6379/0", c.Redis.URL)
	assert.Equal(t, 48*time.Hour, c.Invitation.Expiry)
	assert.Equal(t, 30, c.Activity.RetentionDays)
	assert.Equal(t, 30*24*time.Hour, c.Activity.RetentionWindow())
	assert.Equal(t, 10, c.Quota.DefaultMaxProjects)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
}

func TestLoad_DotenvFillsUnsetVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("REDIS_URL", "")
	require.NoError(t, os.Unsetenv("REDIS_URL"))
	dotenv := writeFile(t, ".env", "REDIS_URL=redis://dotenv:6379/1\n")

	c, err := load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "redis://dotenv:6379/1", c.Redis.URL)
}

func TestLoad_MissingDotenvIsIgnored(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("REDIS_URL", "redis://env:6379/0")

	_, err := load("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{URL: "postgres://x"},
			Redis:    RedisConfig{URL: "redis://x"},
			JWT: JWTConfig{
				PrivateKeyPath: "a",
				PublicKeyPath:  "b",
			},
			Server: ServerConfig{
				ReadTimeout:  time.Second,
				WriteTimeout: time.Second,
			},
			Invitation: InvitationConfig{Expiry: time.Hour},
			Activity: ActivityConfig{
				RetentionDays: 1,
				SweepInterval: time.Hour,
			},
			Quota: QuotaConfig{DefaultMaxProjects: 1, DefaultMaxMembers: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing database",
			mutate:  func(c *Config) { c.Database.URL = "" },
			wantErr: "DATABASE_URL",
		},
		{
			name: "cors wildcard with credentials",
			mutate: func(c *Config) {
				c.CORS.AllowCredentials = true
				c.CORS.AllowedOrigins = []string{"*"}
			},
			wantErr: "wildcard",
		},
		{
			name:    "zero retention",
			mutate:  func(c *Config) { c.Activity.RetentionDays = 0 },
			wantErr: "retention_days",
		},
		{
			name: "insecure otel in production",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Otel.Enabled = true
				c.Otel.Insecure = true
			},
			wantErr: "OTEL_INSECURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := validate(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
