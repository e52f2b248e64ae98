package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
dataset:
  source: sqlite
  path: /var/lib/autosales/sales.db
server:
  port: 9090
  grpc-enabled: true
dashboard:
  page-title: Sales
log:
  file: /var/log/autosales.log
  max-size-mb: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	cfg, err := Load(NewYAMLProvider(writeConfig(t, sampleYAML)))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Dataset.Source != SourceSQLite || cfg.Dataset.Path != "/var/lib/autosales/sales.db" {
		t.Errorf("unexpected dataset config: %+v", cfg.Dataset)
	}
	if cfg.Server.Port != 9090 || !cfg.Server.GRPCEnabled {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("expected default listen addr, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Dashboard.PageTitle != "Sales" {
		t.Errorf("expected page title Sales, got %q", cfg.Dashboard.PageTitle)
	}
	if cfg.Dashboard.ChartWidth != DefaultChartWidth || cfg.Dashboard.DefaultYear != DefaultYear {
		t.Errorf("expected dashboard defaults, got %+v", cfg.Dashboard)
	}
	if cfg.Log.MaxSizeMB != 10 {
		t.Errorf("expected log max size 10, got %d", cfg.Log.MaxSizeMB)
	}
}

func TestYAMLProviderRejectsUnknownKeys(t *testing.T) {
	_, err := NewYAMLProvider(writeConfig(t, "dataset:\n  sauce: csv\n")).LoadConfig()
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvProviderOverrides(t *testing.T) {
	t.Setenv("AUTOSALES_DATASET_SOURCE", "csv")
	t.Setenv("AUTOSALES_DATASET_PATH", "/tmp/sales.csv")
	t.Setenv("AUTOSALES_PORT", "7000")

	cfg, err := Load(NewEnvProvider(NewYAMLProvider(writeConfig(t, sampleYAML))))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Dataset.Source != SourceCSV || cfg.Dataset.Path != "/tmp/sales.csv" {
		t.Errorf("env did not override dataset: %+v", cfg.Dataset)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("env did not override port: %d", cfg.Server.Port)
	}
	// Unset variables keep the YAML value
	if cfg.Dashboard.PageTitle != "Sales" {
		t.Errorf("expected YAML page title to survive, got %q", cfg.Dashboard.PageTitle)
	}
}

func TestEnvProviderParseError(t *testing.T) {
	t.Setenv("AUTOSALES_PORT", "not-a-port")

	_, err := NewEnvProvider(NewYAMLProvider(writeConfig(t, sampleYAML))).LoadConfig()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConfigData)
		wantErr bool
	}{
		{name: "valid csv", mutate: func(c *ConfigData) {}},
		{name: "missing path", mutate: func(c *ConfigData) { c.Dataset.Path = "" }, wantErr: true},
		{name: "unknown source", mutate: func(c *ConfigData) { c.Dataset.Source = "mongodb" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *ConfigData) { c.Dataset.Source = SourcePostgres }, wantErr: true},
		{name: "port out of range", mutate: func(c *ConfigData) { c.Server.Port = 70000 }, wantErr: true},
		{name: "cert without key", mutate: func(c *ConfigData) { c.Server.TLSCertPath = "cert.pem" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ConfigData{Dataset: DatasetData{Source: SourceCSV, Path: "sales.csv"}}
			cfg.ApplyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
