package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDeviceDBName   = "device.db"
	DefaultServerDBName   = "todo.db"
	DefaultLogName        = "taskcal.log"
)

type Client struct {
	// APIBaseURL points at the host serving /todo.
	APIBaseURL     string `toml:"api_base_url"`
	TimeoutSeconds int    `toml:"request_timeout_seconds"`
	Timezone       string `toml:"timezone"`
	DeviceDBPath   string `toml:"device_db"`
	DefaultFilter  string `toml:"default_filter"`
}

type Server struct {
	Addr        string `toml:"addr"`
	DBPath      string `toml:"db_path"`
	DatabaseURL string `toml:"database_url"`
	AMQPURL     string `toml:"amqp_url"`
	AuditQueue  string `toml:"audit_queue"`
}

type Log struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type Config struct {
	Client Client `toml:"client"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

// DefaultDir is where the config file and device database live.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "taskcal")
	}
	return ".taskcal"
}

func Default(dir string) Config {
	return Config{
		Client: Client{
			APIBaseURL:     "http://127.0.0.1:8080",
			TimeoutSeconds: 10,
			Timezone:       "Local",
			DeviceDBPath:   filepath.Join(dir, DefaultDeviceDBName),
			DefaultFilter:  "ALL",
		},
		Server: Server{
			Addr:       ":8080",
			DBPath:     filepath.Join(dir, DefaultServerDBName),
			AuditQueue: "task_audit_logs",
		},
		Log: Log{
			File:  filepath.Join(dir, "logs", DefaultLogName),
			Level: "info",
		},
	}
}

// LoadOrCreate reads the TOML file at path, writing the defaults there first
// when it does not exist. Environment overrides apply on top.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return FromEnv(cfg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return FromEnv(cfg), nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("TASKCAL_API_BASE_URL"); ok {
		cfg.Client.APIBaseURL = v
	}
	if v, ok := getEnvInt("TASKCAL_REQUEST_TIMEOUT_SECONDS"); ok && v > 0 {
		cfg.Client.TimeoutSeconds = v
	}
	if v, ok := getEnvString("TASKCAL_TIMEZONE"); ok {
		cfg.Client.Timezone = v
	}
	if v, ok := getEnvString("TASKCAL_DEVICE_DB"); ok {
		cfg.Client.DeviceDBPath = v
	}
	if v, ok := getEnvString("TASKCAL_SERVER_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := getEnvString("TASKCAL_SERVER_DB"); ok {
		cfg.Server.DBPath = v
	}
	if v, ok := getEnvString("TASKCAL_DATABASE_URL"); ok {
		cfg.Server.DatabaseURL = v
	}
	if v, ok := getEnvString("TASKCAL_AMQP_URL"); ok {
		cfg.Server.AMQPURL = v
	}
	if v, ok := getEnvString("TASKCAL_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := getEnvString("TASKCAL_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := getEnvBool("TASKCAL_DEBUG"); ok && v {
		cfg.Log.Level = "debug"
	}
	return cfg
}

func (c Client) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location resolves the configured timezone. "Local" and "" mean the
// process location.
func (c Client) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
