package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddress != "0.0.0.0:8000" {
		t.Errorf("ListenAddress = %q", c.ListenAddress)
	}
	if c.MaxBodyBytes != 0 {
		t.Errorf("MaxBodyBytes = %d, want unlimited", c.MaxBodyBytes)
	}
	if c.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout = %s", c.ShutdownTimeout)
	}
	if c.Log.Level != "info" || c.Log.Format != "text" {
		t.Errorf("Log = %+v", c.Log)
	}
	if !reflect.DeepEqual(c.CORS.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v", c.CORS.AllowedOrigins)
	}
	if !c.Metrics.Enabled || c.Metrics.LogInterval != time.Second {
		t.Errorf("Metrics = %+v", c.Metrics)
	}
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	path := writeConfig(t, `
listen_address: 127.0.0.1:9000
max_body_bytes: 2048
shutdown_timeout: 3s
log:
  level: warn
  format: json
cors:
  allowed_origins:
    - chrome-extension://abc
metrics:
  enabled: false
`)
	t.Setenv("RECEIVER_LOG_LEVEL", "error")

	fs, args := NewFlagSet("test")
	if err := fs.Parse([]string{"--config", path, "--listen", "127.0.0.1:9100"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	c, err := Load(args)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddress != "127.0.0.1:9100" {
		t.Errorf("flag should win over file, got %q", c.ListenAddress)
	}
	if c.Log.Level != "error" {
		t.Errorf("env should win over file, got %q", c.Log.Level)
	}
	if c.Log.Format != "json" || c.MaxBodyBytes != 2048 || c.ShutdownTimeout != 3*time.Second {
		t.Errorf("file values not applied: %+v", c)
	}
	if !reflect.DeepEqual(c.CORS.AllowedOrigins, []string{"chrome-extension://abc"}) {
		t.Errorf("AllowedOrigins = %v", c.CORS.AllowedOrigins)
	}
	if c.Metrics.Enabled {
		t.Error("metrics should be disabled by file")
	}
}

func TestLoadDebugFlag(t *testing.T) {
	fs, args := NewFlagSet("test")
	if err := fs.Parse([]string{"-d"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	c, err := Load(args)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", c.Log.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative body limit", "max_body_bytes: -1\n", "max_body_bytes"},
		{"zero shutdown", "shutdown_timeout: 0s\n", "shutdown_timeout"},
		{"bad level", "log:\n  level: loud\n", "log level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"empty listen", "listen_address: \" \"\n", "listen_address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(&CliConfig{ConfigFile: writeConfig(t, tt.body)})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(&CliConfig{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil || !strings.Contains(err.Error(), "error reading config file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadListenOverride(t *testing.T) {
	t.Setenv("RECEIVER_LISTEN_ADDRESS", "127.0.0.1:7000")
	c, err := Load(&CliConfig{Listen: "127.0.0.1:7100"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddress != "127.0.0.1:7100" {
		t.Errorf("ListenAddress = %q, want the --listen value", c.ListenAddress)
	}
}

func TestLoadConfigSetsGlobal(t *testing.T) {
	c, err := LoadConfig(&CliConfig{})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := GetConfig(); got != c {
		t.Errorf("GetConfig = %p, want %p", got, c)
	}
	again, err := LoadConfig(&CliConfig{Listen: "127.0.0.1:1"})
	if err != nil || again != c {
		t.Errorf("second LoadConfig = %p, %v; want the first config", again, err)
	}
}
