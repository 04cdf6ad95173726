package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  host: db.local
  port: 5432
  user: app
  password: secret
  name: docintel
  sslMode: require
minio:
  endpoint: minio.local:9000
  accessKey: ak
  secretKey: sk
  bucketName: documents
  useSSL: true
  publicRead: true
openai:
  apiKey: sk-test
  model: gpt-4o
  timeoutSeconds: 30
ai:
  freeQuestions: 5
  maxUploadMB: 10
auth:
  enabled: true
  apiKeys:
    acme: key-1
cors:
  allowedOrigins:
    - https://app.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.True(t, cfg.Minio.UseSSL)
	assert.True(t, cfg.Minio.PublicRead)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.OpenAITimeout())
	assert.Equal(t, 5, cfg.AI.FreeQuestions)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "key-1", cfg.Auth.APIKeys["acme"])
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 3306
  user: root
  name: docintel
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 45*time.Second, cfg.OpenAITimeout())
	assert.Equal(t, 3, cfg.AI.FreeQuestions)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDSNHelpers(t *testing.T) {
	var cfg Config
	cfg.Database.Host = "db.local"
	cfg.Database.Port = 3306
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Name = "docintel"
	cfg.Database.SSLMode = "disable"

	assert.Equal(t,
		"app:pw@tcp(db.local:3306)/docintel?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
	assert.Equal(t,
		"host=db.local port=3306 user=app password=pw dbname=docintel sslmode=disable",
		cfg.PostgresDSN())
}
