package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory so a developer's own config
// cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return t.TempDir()
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".atelier", "atelier.db"), cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "atelier:absences", cfg.Absence.Stream)

	dayEnd, err := cfg.DefaultDayEnd()
	require.NoError(t, err)
	assert.Equal(t, "17:00:00", dayEnd.String())
}

func TestLoadFileThenEnvironment(t *testing.T) {
	dir := isolate(t)

	fileCfg := Default()
	fileCfg.Actor = "planner"
	fileCfg.Database.DSN = "/data/atelier.db"
	fileCfg.Log.Format = "json"
	require.NoError(t, SaveConfig(dir, fileCfg))

	t.Setenv("ATELIER_ACTOR", "night-shift")
	t.Setenv("ATELIER_AUDIT_ASYNC", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "night-shift", cfg.Actor, "environment wins over file")
	assert.Equal(t, "/data/atelier.db", cfg.Database.DSN, "file value kept when env unset")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Audit.Async)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ATELIER_REDIS_ADDR=localhost:6379\nATELIER_AUDIT_STREAM=atelier:audit\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("ATELIER_REDIS_ADDR")
		os.Unsetenv("ATELIER_AUDIT_STREAM")
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "atelier:audit", cfg.Audit.Stream)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".atelier"), 0755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("{not json"), 0644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: `database.driver must be sqlite3 or postgres, got "mysql"`,
		},
		{
			name:    "empty dsn",
			mutate:  func(c *Config) { c.Database.DSN = " " },
			wantErr: "database.dsn is required",
		},
		{
			name:    "bad day end",
			mutate:  func(c *Config) { c.Calendar.DefaultDayEnd = "5pm" },
			wantErr: "calendar.default_day_end",
		},
		{
			name:    "audit stream without redis",
			mutate:  func(c *Config) { c.Audit.Stream = "atelier:audit" },
			wantErr: "audit.stream requires redis.addr",
		},
		{
			name:    "async audit without buffer",
			mutate:  func(c *Config) { c.Audit.Async = true; c.Audit.Buffer = 0 },
			wantErr: "audit.buffer must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConsumerName(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.ConsumerName())

	cfg.Absence.Consumer = "line-3"
	assert.Equal(t, "line-3", cfg.ConsumerName())
}
