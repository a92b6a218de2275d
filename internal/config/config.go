package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Device   DeviceConfig   `yaml:"device"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// DeviceConfig tunes the terminal-facing protocol surface.
type DeviceConfig struct {
	// TimezoneOffset is the fixed UTC offset of the facility, e.g. "+06:00".
	// Terminals report wall-clock time with no zone marker and their clocks run
	// in facility time regardless of where the server is hosted.
	TimezoneOffset     string        `yaml:"timezone_offset"`
	HeartbeatThreshold time.Duration `yaml:"heartbeat_threshold"`
	// ErrorDelay and TransInterval are handed to terminals in the handshake
	// option block.
	ErrorDelay    int `yaml:"error_delay"`
	TransInterval int `yaml:"trans_interval"`
}

// Location returns the fixed facility timezone derived from TimezoneOffset.
func (d DeviceConfig) Location() (*time.Location, error) {
	offset, err := parseUTCOffset(d.TimezoneOffset)
	if err != nil {
		return nil, err
	}
	return time.FixedZone("UTC"+d.TimezoneOffset, offset), nil
}

func parseUTCOffset(s string) (int, error) {
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("invalid timezone offset %q (want like +06:00)", s)
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone offset %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(s[4:6])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone offset %q: %w", s, err)
	}
	seconds := hours*3600 + minutes*60
	if s[0] == '-' {
		seconds = -seconds
	}
	return seconds, nil
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if _, err := cfg.Device.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Device.TimezoneOffset == "" {
		cfg.Device.TimezoneOffset = "+06:00"
	}
	if cfg.Device.HeartbeatThreshold == 0 {
		cfg.Device.HeartbeatThreshold = 45 * time.Second
	}
	if cfg.Device.ErrorDelay == 0 {
		cfg.Device.ErrorDelay = 30
	}
	if cfg.Device.TransInterval == 0 {
		cfg.Device.TransInterval = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GH_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("GH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("GH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("GH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("GH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("GH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("GH_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("GH_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("GH_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("GH_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("GH_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("GH_DEVICE_TZ_OFFSET"); v != "" {
		cfg.Device.TimezoneOffset = v
	}
	if v := os.Getenv("GH_HEARTBEAT_THRESHOLD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Device.HeartbeatThreshold = d
		}
	}
}
