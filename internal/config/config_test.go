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
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Error(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "coredata.yaml", `
api_url: https://example.com/wp-json
username: admin
application_password: "abcd efgh"
request_timeout: 5s
redis_addr: localhost:6379
redis_db: 2
redis_ttl: 1h
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/wp-json", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.RedisTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "coredata.json", `{"api_url": "http://localhost/wp-json", "nonce": "n1"}`)
	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/wp-json", cfg.APIURL)
	assert.Equal(t, "n1", cfg.Nonce)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "coredata.yaml", "api_ulr: typo\n")
	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, cfg.APIURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "coredata.yaml", "api_url: https://file.example/wp-json\n")
	t.Setenv("COREDATA_API_URL", "https://env.example/wp-json")
	t.Setenv("COREDATA_REDIS_TTL", "10m")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/wp-json", cfg.APIURL)
	assert.Equal(t, 10*time.Minute, cfg.RedisTTL)
}

func TestLoad_DotEnv(t *testing.T) {
	// godotenv never overrides variables that are already set.
	t.Setenv("COREDATA_LISTEN", ":9090")
	envFile := writeFile(t, ".env", "COREDATA_NONCE=from-dotenv\nCOREDATA_LISTEN=:1234\n")
	t.Cleanup(func() { os.Unsetenv("COREDATA_NONCE") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Nonce)
	assert.Equal(t, ":9090", cfg.Listen)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("COREDATA_REDIS_DB", "zero")
	_, err := Load("", "")
	assert.Error(t, err)
}

func TestValidate_UsernameWithoutPassword(t *testing.T) {
	cfg := Default()
	cfg.APIURL = "http://localhost"
	cfg.Username = "admin"
	assert.Error(t, cfg.Validate())
}

func TestLoad_RedactFieldsAndKey(t *testing.T) {
	path := writeFile(t, "coredata.yaml", `
api_url: http://localhost/wp-json
redact_fields: [email, "^password$"]
encryption_key: a2tra2tra2tra2tra2tra2tra2tra2tra2tra2tra2s=
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "^password$"}, cfg.RedactFields)

	key, err := cfg.DecodeEncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.NoError(t, cfg.Validate())

	t.Setenv("COREDATA_REDACT_FIELDS", "token, secret")
	t.Setenv("COREDATA_ENCRYPTION_KEY", "c2hvcnQ=")
	cfg, err = Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"token", "secret"}, cfg.RedactFields)
	assert.Error(t, cfg.Validate())
}
