package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Knowledge.Driver)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 2*time.Second, cfg.Client.ProgressInterval)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  maxUploadMB: 4
ai:
  provider: openai
  model: gpt-4o-mini
knowledge:
  driver: postgres
  database:
    host: db
    port: 5432
    user: eco
    password: secret
    name: factors
solar:
  appliances:
    Kettle: 1800
client:
  progressInterval: 500ms
`), 0o600))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9090")
	t.Setenv("ECOSENSE_BACKEND_URL", "http://backend:9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(4<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 1800.0, cfg.Solar.Appliances["Kettle"])
	assert.Equal(t, 500*time.Millisecond, cfg.Client.ProgressInterval)
	assert.Equal(t, "http://backend:9090", cfg.Client.BackendURL)
	assert.Equal(t, "host=db port=5432 user=eco password=secret dbname=factors sslmode=disable", cfg.PostgresDSN())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("knowledge:\n  driver: redis\n"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "knowledge.driver")
}

func TestApplyEnvPicksProviderKey(t *testing.T) {
	cfg := Default()
	env := map[string]string{"GEMINI_API_KEY": "g-key", "OPENAI_API_KEY": "o-key"}
	cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	assert.Equal(t, "g-key", cfg.AI.APIKey)
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.Knowledge.Database = Database{Host: "localhost", Port: 3306, User: "root", Password: "pw", Name: "eco"}
	assert.Equal(t, "root:pw@tcp(localhost:3306)/eco?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}
