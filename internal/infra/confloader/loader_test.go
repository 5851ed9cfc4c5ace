package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Gateway struct {
		Host           string        `koanf:"host"`
		Port           int           `koanf:"port"`
		CICSServer     string        `koanf:"cics_server"`
		ConnectTimeout int           `koanf:"socket_connect_timeout"`
		IdleTimeout    time.Duration `koanf:"idle_timeout"`
		Auth           struct {
			UserID string `koanf:"user_id"`
		} `koanf:"auth"`
	} `koanf:"gateway"`
}

const testYAML = `
gateway:
  host: "gw.example.com"
  port: 2006
  cics_server: "CICSA"
  idle_timeout: 90s
  auth:
    user_id: "CICSUSER"
`

func unmarshal(t *testing.T, l *Loader) testConfig {
	t.Helper()
	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(writeConfig(t, testYAML)); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	cfg := unmarshal(t, l)
	if cfg.Gateway.Host != "gw.example.com" {
		t.Errorf("gateway.host = %q, want %q", cfg.Gateway.Host, "gw.example.com")
	}
	if cfg.Gateway.Port != 2006 {
		t.Errorf("gateway.port = %d, want 2006", cfg.Gateway.Port)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("ECIGATE_GATEWAY__CICS_SERVER", "CICSB")
	t.Setenv("ECIGATE_GATEWAY__AUTH__USER_ID", "ENVUSER")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	cfg := unmarshal(t, l)
	if cfg.Gateway.CICSServer != "CICSB" {
		t.Errorf("gateway.cics_server = %q, want %q", cfg.Gateway.CICSServer, "CICSB")
	}
	if cfg.Gateway.Auth.UserID != "ENVUSER" {
		t.Errorf("gateway.auth.user_id = %q, want %q", cfg.Gateway.Auth.UserID, "ENVUSER")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_GATEWAY__PORT", "9090")
	t.Setenv("ECIGATE_GATEWAY__HOST", "ignored")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	cfg := unmarshal(t, l)
	if cfg.Gateway.Port != 9090 {
		t.Errorf("gateway.port = %d, want 9090", cfg.Gateway.Port)
	}
	if cfg.Gateway.Host != "" {
		t.Errorf("gateway.host = %q, want unset for a foreign prefix", cfg.Gateway.Host)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	if err := l.LoadMap(map[string]any{
		"gateway.host": "localhost",
		"gateway.port": 2007,
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	cfg := unmarshal(t, l)
	if cfg.Gateway.Host != "localhost" {
		t.Errorf("gateway.host = %q, want %q", cfg.Gateway.Host, "localhost")
	}
	if cfg.Gateway.Port != 2007 {
		t.Errorf("gateway.port = %d, want 2007", cfg.Gateway.Port)
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	t.Setenv("ECIGATE_GATEWAY__HOST", "from-env")

	l := NewLoader(WithConfigFile(writeConfig(t, testYAML)))

	var cfg testConfig
	cfg.Gateway.ConnectTimeout = 30 // default, not set by any source
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.Host != "from-env" {
		t.Errorf("Host = %q, want %q (env should override file)", cfg.Gateway.Host, "from-env")
	}
	if cfg.Gateway.CICSServer != "CICSA" {
		t.Errorf("CICSServer = %q, want file value", cfg.Gateway.CICSServer)
	}
	if cfg.Gateway.ConnectTimeout != 30 {
		t.Errorf("ConnectTimeout = %d, want default 30 kept", cfg.Gateway.ConnectTimeout)
	}

	// Flags win over everything.
	if err := l.LoadMap(map[string]any{"gateway.host": "from-flag"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Gateway.Host != "from-flag" {
		t.Errorf("Host = %q, want %q", cfg.Gateway.Host, "from-flag")
	}
}

func TestLoader_Unmarshal(t *testing.T) {
	l := NewLoader(WithConfigFile(writeConfig(t, testYAML)))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gateway.Port != 2006 {
		t.Errorf("Port = %d, want 2006", cfg.Gateway.Port)
	}
	if cfg.Gateway.IdleTimeout != 90*time.Second {
		t.Errorf("IdleTimeout = %v, want 90s", cfg.Gateway.IdleTimeout)
	}
	if cfg.Gateway.Auth.UserID != "CICSUSER" {
		t.Errorf("Auth.UserID = %q", cfg.Gateway.Auth.UserID)
	}
}
