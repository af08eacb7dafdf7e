package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/rota-engine/rota"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "rota.db", cfg.Database.Path)
	assert.Equal(t, rota.FiveTwo, cfg.Schedule.DefaultVariant())
	assert.Equal(t, rota.SixOneFixed, cfg.Schedule.LegacyVariant())
	assert.Equal(t, 366, cfg.Schedule.MaxRangeDays)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	// GIVEN: a config file and an env override
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  write_timeout: 5s
database:
  path: /tmp/rota-test.db
schedule:
  default_rotation: 6x1 fixo
  batch_workers: 2
`), 0o644))
	t.Setenv("ROTA_SCHEDULE_MAX_RANGE_DAYS", "31")

	// WHEN: loaded
	cfg, err := Load(path)

	// THEN: file values, env override and defaults combine
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "/tmp/rota-test.db", cfg.Database.Path)
	assert.Equal(t, rota.SixOneFixed, cfg.Schedule.DefaultVariant())
	assert.Equal(t, 2, cfg.Schedule.BatchWorkers)
	assert.Equal(t, 31, cfg.Schedule.MaxRangeDays)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  default_rotation: 4x3\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "default_rotation")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Schedule.BatchWorkers = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database.Driver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "database.driver")

	cfg = Default()
	cfg.Database.Driver = DriverMemory
	cfg.Database.Path = ""
	assert.NoError(t, cfg.Validate())
}
