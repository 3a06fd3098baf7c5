package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: test
database:
  driver: sqlite
  path: ":memory:"
jwt:
  secret: short
  expire_hours: 2
auth:
  admin_emails: [Admin@Example.com]
storage:
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
queue:
  driver: memory
worker:
  fetch_timeout_seconds: 5
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 5*time.Second, cfg.Worker.FetchTimeout)
	assert.Equal(t, 1500, cfg.Worker.SectionChars)
	assert.False(t, cfg.Worker.AllowPrivateNetworks)
	assert.Equal(t, "@every 2s", cfg.Queue.RelayInterval)
	assert.True(t, cfg.Auth.IsAdminEmail("admin@example.com"))
	assert.False(t, cfg.Auth.IsAdminEmail("a@x.com"))
	assert.DirExists(t, cfg.Storage.LocalPath)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
jwt:
  secret: from-file
queue:
  driver: memory
storage:
  local_path: `+t.TempDir()+`
`)
	t.Setenv("JWT_SECRET_KEY", "from-env")
	t.Setenv("DATABASE_DRIVER", "mysql")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "mysql", cfg.Database.Driver)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"missing secret": `
database: {driver: sqlite}
queue: {driver: memory}
`,
		"short secret in release": `
server: {mode: release}
database: {driver: sqlite}
jwt: {secret: short}
queue: {driver: memory}
`,
		"unknown driver": `
database: {driver: oracle}
jwt: {secret: x}
queue: {driver: memory}
`,
		"unknown queue": `
database: {driver: sqlite}
jwt: {secret: x}
queue: {driver: kafka}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := writeConfig(t, body+"storage: {local_path: "+t.TempDir()+"}\n")
			_, err := LoadConfig(dir)
			assert.Error(t, err)
		})
	}
}
