package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/form"
	"github.com/aretw0/heartaxis/pkg/persistence/middleware"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config represents the structure of heartaxis.yaml.
type Config struct {
	Settings domain.Settings `yaml:"settings" json:"settings"`
	Display  form.Display    `yaml:"display" json:"display"`
	Log      LogConfig       `yaml:"log" json:"log"`
	Server   ServerConfig    `yaml:"server" json:"server"`
	Store    StoreConfig     `yaml:"store" json:"store"`
	MQTT     MQTTConfig      `yaml:"mqtt" json:"mqtt"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" json:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// StoreConfig selects where sessions are kept.
type StoreConfig struct {
	Backend    string           `yaml:"backend" json:"backend"`
	Dir        string           `yaml:"dir" json:"dir"`
	Redis      RedisConfig      `yaml:"redis" json:"redis"`
	Encryption EncryptionConfig `yaml:"encryption" json:"encryption"`
}

// EncryptionConfig seals stored readings when Key is set.
// Keys are base64 encoded 32-byte AES keys.
type EncryptionConfig struct {
	Key          string   `yaml:"key,omitempty" json:"key,omitempty"`
	FallbackKeys []string `yaml:"fallback_keys,omitempty" json:"fallback_keys,omitempty"`
}

// Enabled reports whether an active key is configured.
func (e EncryptionConfig) Enabled() bool {
	return e.Key != ""
}

// Keys decodes the active and fallback keys.
func (e EncryptionConfig) Keys() (active []byte, fallback [][]byte, err error) {
	active, err = middleware.DecodeKey(e.Key)
	if err != nil {
		return nil, nil, err
	}
	for i, k := range e.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	Lock     bool          `yaml:"lock" json:"lock"`
}

// MQTTConfig enables outcome publishing when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker" json:"broker"`
	ClientID string `yaml:"client_id" json:"client_id"`
	Topic    string `yaml:"topic" json:"topic"`
	QoS      byte   `yaml:"qos" json:"qos"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Settings: domain.DefaultSettings(),
		Display:  form.DefaultDisplay(),
		Log:      LogConfig{Level: "info"},
		Server:   ServerConfig{Port: "8080", ShutdownTimeout: 5 * time.Second},
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(".heartaxis", "sessions"),
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "heartaxis:session:"},
		},
		MQTT: MQTTConfig{ClientID: "heartaxis", Topic: "heartaxis/outcomes"},
	}
}

// Load reads a configuration file (YAML or JSON) on top of the defaults.
// A missing file is not an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := Parse(data, strings.ToLower(filepath.Ext(path)), &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes data into cfg, keeping the values of keys it does not mention.
func Parse(data []byte, ext string, cfg *Config) error {
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config json: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config yaml: %w", err)
	}
	return nil
}

// Validate checks the settings and the store selection.
func (c Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Encryption.Enabled() {
		if _, _, err := c.Store.Encryption.Keys(); err != nil {
			return err
		}
	} else if len(c.Store.Encryption.FallbackKeys) > 0 {
		return fmt.Errorf("encryption fallback keys need an active key")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos %d", c.MQTT.QoS)
	}
	return nil
}

const redactedValue = "<redacted>"

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	if c.Store.Redis.Password != "" {
		c.Store.Redis.Password = redactedValue
	}
	if c.Store.Encryption.Key != "" {
		c.Store.Encryption.Key = redactedValue
	}
	if n := len(c.Store.Encryption.FallbackKeys); n > 0 {
		keys := make([]string, n)
		for i := range keys {
			keys[i] = redactedValue
		}
		c.Store.Encryption.FallbackKeys = keys
	}
	return c
}

// Marshal renders the configuration as YAML (used by `heartaxis settings`).
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
