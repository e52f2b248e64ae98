package config

import (
	"errors"
	"fmt"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// Dataset source types
const (
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Dataset   DatasetData   `json:"dataset"`
	Server    ServerData    `json:"server"`
	Dashboard DashboardData `json:"dashboard"`
	Log       LogData       `json:"log"`
}

// DatasetData describes where the historical sales table is loaded from
type DatasetData struct {
	Source           string `json:"source" env:"AUTOSALES_DATASET_SOURCE"`
	Path             string `json:"path,omitempty" env:"AUTOSALES_DATASET_PATH"`
	ConnectionString string `json:"connection_string,omitempty" env:"AUTOSALES_DATASET_CONNECTION_STRING"`
	Table            string `json:"table,omitempty" env:"AUTOSALES_DATASET_TABLE"`
}

// ServerData holds the listener configuration shared by the REST and gRPC
// front ends
type ServerData struct {
	ListenAddr  string `json:"listen_addr,omitempty" env:"AUTOSALES_LISTEN_ADDR"`
	Port        int    `json:"port,omitempty" env:"AUTOSALES_PORT"`
	TLSCertPath string `json:"tls_cert_path,omitempty" env:"AUTOSALES_TLS_CERT"`
	TLSKeyPath  string `json:"tls_key_path,omitempty" env:"AUTOSALES_TLS_KEY"`
	GRPCEnabled bool   `json:"grpc_enabled,omitempty" env:"AUTOSALES_GRPC_ENABLED"`
}

// DashboardData controls the page and chart rendering
type DashboardData struct {
	PageTitle   string `json:"page_title,omitempty" env:"AUTOSALES_PAGE_TITLE"`
	DefaultYear int    `json:"default_year,omitempty" env:"AUTOSALES_DEFAULT_YEAR"`
	ChartWidth  int    `json:"chart_width,omitempty" env:"AUTOSALES_CHART_WIDTH"`
	ChartHeight int    `json:"chart_height,omitempty" env:"AUTOSALES_CHART_HEIGHT"`
}

// LogData configures optional file logging with rotation
type LogData struct {
	File       string `json:"file,omitempty" env:"AUTOSALES_LOG_FILE"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" env:"AUTOSALES_LOG_MAX_SIZE_MB"`
	MaxBackups int    `json:"max_backups,omitempty" env:"AUTOSALES_LOG_MAX_BACKUPS"`
	MaxAgeDays int    `json:"max_age_days,omitempty" env:"AUTOSALES_LOG_MAX_AGE_DAYS"`
}

// Default values filled in by ApplyDefaults
const (
	DefaultListenAddr  = "0.0.0.0"
	DefaultPort        = 8080
	DefaultPageTitle   = "Automobile Sales Statistics Dashboard"
	DefaultYear        = 1980
	DefaultChartWidth  = 640
	DefaultChartHeight = 400
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// ApplyDefaults fills unset optional fields
func (c *ConfigData) ApplyDefaults() {
	if c.Dataset.Source == "" {
		c.Dataset.Source = SourceCSV
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Dashboard.PageTitle == "" {
		c.Dashboard.PageTitle = DefaultPageTitle
	}
	if c.Dashboard.DefaultYear == 0 {
		c.Dashboard.DefaultYear = DefaultYear
	}
	if c.Dashboard.ChartWidth == 0 {
		c.Dashboard.ChartWidth = DefaultChartWidth
	}
	if c.Dashboard.ChartHeight == 0 {
		c.Dashboard.ChartHeight = DefaultChartHeight
	}
}

// Validate checks the configuration for values the application cannot run
// with
func (c *ConfigData) Validate() error {
	switch c.Dataset.Source {
	case SourceCSV, SourceSQLite:
		if c.Dataset.Path == "" {
			return fmt.Errorf("%w: dataset.path is required for %s sources", ErrInvalidConfig, c.Dataset.Source)
		}
	case SourcePostgres:
		if c.Dataset.ConnectionString == "" {
			return fmt.Errorf("%w: dataset.connection-string is required for postgres sources", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported dataset source %q", ErrInvalidConfig, c.Dataset.Source)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if (c.Server.TLSCertPath == "") != (c.Server.TLSKeyPath == "") {
		return fmt.Errorf("%w: server.tls-cert and server.tls-key must be set together", ErrInvalidConfig)
	}
	if c.Dashboard.ChartWidth < 0 || c.Dashboard.ChartHeight < 0 {
		return fmt.Errorf("%w: chart dimensions must be positive", ErrInvalidConfig)
	}
	return nil
}
