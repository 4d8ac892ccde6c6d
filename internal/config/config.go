// Package config loads the casos CLI configuration.
//
// Values are layered, lowest precedence first:
//  1. built-in defaults
//  2. a YAML file, when CASOS_CONFIG names one
//  3. CASOS_* environment variables (CASOS_EXPORT_S3_BUCKET -> export_s3_bucket)
//
// Command-line flags and the active remote are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CASOS_"

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

// ErrInvalidConfig is wrapped by every validation error returned from Load.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server   string        `koanf:"server"`    // casos API base URL (default "http://localhost:8000/api")
	Token    string        `koanf:"token"`     // bearer token (optional)
	Timeout  time.Duration `koanf:"timeout"`   // per-request timeout (0 = none)
	LogLevel string        `koanf:"log_level"` // debug, info, warn, error (default "info")
	StateDir string        `koanf:"state_dir"` // mode and remotes (default ~/.local/state/casos)

	// View server
	HTTPAddr  string `koanf:"http_addr"`  // default ":5173"
	AuthToken string `koanf:"auth_token"` // required bearer token for the view server (optional)

	// Events
	NATSURL string `koanf:"nats_url"` // optional, empty = no events

	// Event hooks, run by "casos serve" for every matching bus event
	HookCommand string        `koanf:"hook_command"` // shell command; empty = disabled
	HookTopics  string        `koanf:"hook_topics"`  // NATS subject pattern (default "casos.>")
	HookTimeout time.Duration `koanf:"hook_timeout"` // per run (default 30s, max 5m)

	// Export settings
	ExportInterval   time.Duration `koanf:"export_interval"`    // periodic export while serving (0 = disabled)
	ExportS3Bucket   string        `koanf:"export_s3_bucket"`   // enables S3 when set
	ExportS3Endpoint string        `koanf:"export_s3_endpoint"` // custom endpoint for MinIO
	ExportS3Region   string        `koanf:"export_s3_region"`   // default "us-east-1"
	ExportS3Key      string        `koanf:"export_s3_key"`      // default "casos/{mode}/export.jsonl"; {mode} and {date} expand per write
	ExportGitRepo    string        `koanf:"export_git_repo"`    // enables git when set; path to clone
	ExportGitFile    string        `koanf:"export_git_file"`    // default "casos.jsonl"
	ExportGitBranch  string        `koanf:"export_git_branch"`  // default "main"
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server:          "http://localhost:8000/api",
		LogLevel:        "info",
		HTTPAddr:        ":5173",
		HookTopics:      "casos.>",
		ExportS3Region:  "us-east-1",
		ExportS3Key:     "casos/{mode}/export.jsonl",
		ExportGitFile:   "casos.jsonl",
		ExportGitBranch: "main",
	}
}

func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	// Empty variables are skipped so that an unset-by-blanking variable
	// does not wipe a default.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if value == "" || key == "config" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = filepath.Join(home, ".local", "state", "casos")
	} else {
		dir, err := expandHome(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		cfg.StateDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	if err := ValidateServer(c.Server); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.HookTimeout < 0 {
		return fmt.Errorf("%w: hook_timeout must not be negative", ErrInvalidConfig)
	}
	if c.ExportInterval < 0 {
		return fmt.Errorf("%w: export_interval must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ValidateServer checks that server is an absolute http(s) URL.
func ValidateServer(server string) error {
	if strings.TrimSpace(server) == "" {
		return fmt.Errorf("%w: server must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(server)
	if err != nil {
		return fmt.Errorf("%w: server: %v", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: server %q must be an absolute http(s) URL", ErrInvalidConfig, server)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
