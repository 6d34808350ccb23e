// Package settings loads process configuration for the 2048 server.
//
// Values come from an optional YAML file and from environment variables, with
// env-default tags filling the rest. Command line flags are applied on top by
// the caller.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultFile is read when no explicit path is given and it exists
const DefaultFile = "game2048.yml"

type Settings struct {
	Host            string        `yaml:"host" env:"GAME2048_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"PORT" env-default:"8080"`
	ConfigDir       string        `yaml:"config_dir" env:"CONFIG_DIR" env-default:"configs"`
	SessionsDir     string        `yaml:"sessions_dir" env:"SESSIONS_DIR" env-default:"sessions"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	SessionTTL      time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL" env-default:"1h"`
	HighScore       HighScore     `yaml:"highscore" env-prefix:"HIGHSCORE_"`
	Ngrok           Ngrok         `yaml:"ngrok" env-prefix:"NGROK_"`
}

// HighScore selects where the best score is kept
type HighScore struct {
	Backend     string `yaml:"backend" env:"BACKEND" env-default:"file"`
	Path        string `yaml:"path" env:"PATH" env-default:"highscore.properties"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX" env-default:"game2048"`
}

// Ngrok configures the optional public tunnel
type Ngrok struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	AuthToken string `yaml:"auth_token" env:"AUTHTOKEN"`
	Domain    string `yaml:"domain" env:"DOMAIN"`
}

// Load reads path (when non-empty) and the environment. With an empty path,
// DefaultFile is used if present, otherwise only the environment is read.
func Load(path string) (*Settings, error) {
	s := &Settings{}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, s); err != nil {
			return nil, fmt.Errorf("unable to load settings file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(s); err != nil {
		return nil, fmt.Errorf("unable to load settings from environment: %w", err)
	}

	// NGROK_AUTH_TOKEN is accepted as well as NGROK_AUTHTOKEN
	if s.Ngrok.AuthToken == "" {
		s.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the values cleanenv cannot
func (s *Settings) Validate() error {
	var errs []error

	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", s.Port))
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", s.LogFormat))
	}
	if s.SessionTTL < 0 {
		errs = append(errs, errors.New("session_ttl cannot be negative"))
	}
	if s.CleanupInterval < 0 {
		errs = append(errs, errors.New("cleanup_interval cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns host:port
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Description returns the help text listing every environment variable
func Description() (string, error) {
	return cleanenv.GetDescription(&Settings{}, nil)
}
