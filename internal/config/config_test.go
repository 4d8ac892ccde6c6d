package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// envVars lists every variable Load reads; each test blanks them first.
var envVars = []string{
	"CASOS_CONFIG", "CASOS_SERVER", "CASOS_TOKEN", "CASOS_TIMEOUT", "CASOS_LOG_LEVEL",
	"CASOS_STATE_DIR", "CASOS_HTTP_ADDR", "CASOS_AUTH_TOKEN", "CASOS_NATS_URL",
	"CASOS_EXPORT_INTERVAL", "CASOS_EXPORT_S3_BUCKET", "CASOS_EXPORT_S3_ENDPOINT",
	"CASOS_EXPORT_S3_REGION", "CASOS_EXPORT_S3_KEY", "CASOS_EXPORT_GIT_REPO",
	"CASOS_EXPORT_GIT_FILE", "CASOS_EXPORT_GIT_BRANCH",
	"CASOS_HOOK_COMMAND", "CASOS_HOOK_TOPICS", "CASOS_HOOK_TIMEOUT",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "casos.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantServer   string
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:         "Defaults",
			env:          map[string]string{},
			wantServer:   "http://localhost:8000/api",
			wantHTTPAddr: ":5173",
		},
		{
			name: "CustomValues",
			env: map[string]string{
				"CASOS_SERVER":    "https://casos.example.cl/api",
				"CASOS_HTTP_ADDR": ":3000",
				"CASOS_NATS_URL":  "nats://localhost:4222",
			},
			wantServer:   "https://casos.example.cl/api",
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
		{
			name:    "RelativeServer",
			env:     map[string]string{"CASOS_SERVER": "/api"},
			wantErr: true,
		},
		{
			name:    "NonHTTPServer",
			env:     map[string]string{"CASOS_SERVER": "ftp://example.cl/api"},
			wantErr: true,
		},
		{
			name:    "BadTimeout",
			env:     map[string]string{"CASOS_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "NegativeTimeout",
			env:     map[string]string{"CASOS_TIMEOUT": "-1s"},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Server != tc.wantServer {
				t.Errorf("Server = %q, want %q", cfg.Server, tc.wantServer)
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
		})
	}
}

func TestLoad_ExportDefaults(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExportInterval != 0 {
		t.Errorf("ExportInterval = %v, want 0", cfg.ExportInterval)
	}
	if cfg.ExportS3Region != "us-east-1" {
		t.Errorf("ExportS3Region = %q, want us-east-1", cfg.ExportS3Region)
	}
	if cfg.ExportS3Key != "casos/{mode}/export.jsonl" {
		t.Errorf("ExportS3Key = %q, want casos/{mode}/export.jsonl", cfg.ExportS3Key)
	}
	if cfg.ExportGitFile != "casos.jsonl" || cfg.ExportGitBranch != "main" {
		t.Errorf("git defaults = %q/%q", cfg.ExportGitFile, cfg.ExportGitBranch)
	}
	if cfg.ExportS3Bucket != "" || cfg.ExportGitRepo != "" {
		t.Error("no export destination should be enabled by default")
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".local", "state", "casos"); cfg.StateDir != want {
		t.Errorf("StateDir = %q, want %q", cfg.StateDir, want)
	}
}

func TestLoad_ExportEnv(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("CASOS_EXPORT_INTERVAL", "5m")
	t.Setenv("CASOS_EXPORT_S3_BUCKET", "casos-backup")
	t.Setenv("CASOS_EXPORT_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("CASOS_EXPORT_GIT_REPO", "/srv/casos-export")
	t.Setenv("CASOS_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExportInterval != 5*time.Minute {
		t.Errorf("ExportInterval = %v, want 5m", cfg.ExportInterval)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.ExportS3Bucket != "casos-backup" || cfg.ExportS3Endpoint != "http://minio:9000" {
		t.Errorf("S3 = %q @ %q", cfg.ExportS3Bucket, cfg.ExportS3Endpoint)
	}
	if cfg.ExportGitRepo != "/srv/casos-export" {
		t.Errorf("ExportGitRepo = %q", cfg.ExportGitRepo)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearAllEnv(t)
	path := writeConfigFile(t, `
server: "https://file.example.cl/api"
http_addr: ":9999"
token: "from-file"
state_dir: "~/casos-state"
`)
	t.Setenv("CASOS_CONFIG", path)
	t.Setenv("CASOS_TOKEN", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server != "https://file.example.cl/api" {
		t.Errorf("Server = %q, want file value", cfg.Server)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want file value", cfg.HTTPAddr)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Token = %q, env must override file", cfg.Token)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "casos-state"); cfg.StateDir != want {
		t.Errorf("StateDir = %q, want %q", cfg.StateDir, want)
	}
	if cfg.ExportS3Region != "us-east-1" {
		t.Errorf("defaults must survive the file layer, ExportS3Region = %q", cfg.ExportS3Region)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("CASOS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateServer(t *testing.T) {
	for _, s := range []string{"http://localhost:8000/api", "https://casos.example.cl/api"} {
		if err := ValidateServer(s); err != nil {
			t.Errorf("ValidateServer(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "   ", "localhost:8000", "/api", "ws://host/api"} {
		err := ValidateServer(s)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ValidateServer(%q) = %v, want ErrInvalidConfig", s, err)
		}
	}
}

func TestLoad_Hooks(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HookCommand != "" || cfg.HookTopics != "casos.>" {
		t.Errorf("hook defaults = %q on %q", cfg.HookCommand, cfg.HookTopics)
	}

	t.Setenv("CASOS_HOOK_COMMAND", "notify-send caso")
	t.Setenv("CASOS_HOOK_TOPICS", "casos.caso.*")
	t.Setenv("CASOS_HOOK_TIMEOUT", "10s")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HookCommand != "notify-send caso" || cfg.HookTopics != "casos.caso.*" || cfg.HookTimeout != 10*time.Second {
		t.Errorf("hooks = %q on %q (%v)", cfg.HookCommand, cfg.HookTopics, cfg.HookTimeout)
	}

	t.Setenv("CASOS_HOOK_TIMEOUT", "-1s")
	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative hook_timeout: err = %v", err)
	}
}
