// Package config loads coredata settings from a file, a .env file and COREDATA_* variables.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COREDATA_"

// Config holds the runtime settings shared by the CLI, the HTTP server and the MCP server.
type Config struct {
	APIURL              string        `mapstructure:"api_url"`
	Username            string        `mapstructure:"username"`
	ApplicationPassword string        `mapstructure:"application_password"`
	Nonce               string        `mapstructure:"nonce"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	EntitiesFile        string        `mapstructure:"entities_file"`
	RedisAddr           string        `mapstructure:"redis_addr"`
	RedisPassword       string        `mapstructure:"redis_password"`
	RedisDB             int           `mapstructure:"redis_db"`
	RedisTTL            time.Duration `mapstructure:"redis_ttl"`
	LogLevel            string        `mapstructure:"log_level"`
	Listen              string        `mapstructure:"listen"`

	// RedactFields are regular expressions of record fields masked before storage.
	RedactFields []string `mapstructure:"redact_fields"`
	// EncryptionKey is a base64 AES-256 key; when set, stored records are encrypted.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
		Listen:         ":8080",
	}
}

// Load builds the configuration: defaults, then the file at path (YAML, or JSON by
// extension; a missing file is ignored), then envFile loaded with godotenv, then
// COREDATA_* variables. Either path may be empty.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings needed to talk to the REST API.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("missing required configuration: api_url (set %sAPI_URL or --api-url)", EnvPrefix)
	}
	if c.Username != "" && c.ApplicationPassword == "" {
		return fmt.Errorf("username %q set without application_password", c.Username)
	}
	if c.EncryptionKey != "" {
		if _, err := c.DecodeEncryptionKey(); err != nil {
			return err
		}
	}
	return nil
}

// DecodeEncryptionKey returns the raw 32-byte key, or nil when encryption is off.
func (c *Config) DecodeEncryptionKey() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption_key: got %d bytes, want 32", len(key))
	}
	return key, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	strs := map[string]*string{
		"API_URL":              &c.APIURL,
		"USERNAME":             &c.Username,
		"APPLICATION_PASSWORD": &c.ApplicationPassword,
		"NONCE":                &c.Nonce,
		"ENTITIES_FILE":        &c.EntitiesFile,
		"REDIS_ADDR":           &c.RedisAddr,
		"REDIS_PASSWORD":       &c.RedisPassword,
		"LOG_LEVEL":            &c.LogLevel,
		"LISTEN":               &c.Listen,
		"ENCRYPTION_KEY":       &c.EncryptionKey,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT": &c.RequestTimeout,
		"REDIS_TTL":       &c.RedisTTL,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv(EnvPrefix + "REDACT_FIELDS"); ok {
		c.RedactFields = nil
		for _, field := range strings.Split(v, ",") {
			if field = strings.TrimSpace(field); field != "" {
				c.RedactFields = append(c.RedactFields, field)
			}
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_DB: %w", EnvPrefix, err)
		}
		c.RedisDB = db
	}
	return nil
}
