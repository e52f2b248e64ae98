package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Dataset   DatasetYAML   `yaml:"dataset"`
		Server    ServerYAML    `yaml:"server,omitempty"`
		Dashboard DashboardYAML `yaml:"dashboard,omitempty"`
		Log       LogYAML       `yaml:"log,omitempty"`
	}

	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, err
	}

	return &ConfigData{
		Dataset: DatasetData{
			Source:           yamlConfig.Dataset.Source,
			Path:             yamlConfig.Dataset.Path,
			ConnectionString: yamlConfig.Dataset.ConnectionString,
			Table:            yamlConfig.Dataset.Table,
		},
		Server: ServerData{
			ListenAddr:  yamlConfig.Server.ListenAddr,
			Port:        yamlConfig.Server.Port,
			TLSCertPath: yamlConfig.Server.TLSCert,
			TLSKeyPath:  yamlConfig.Server.TLSKey,
			GRPCEnabled: yamlConfig.Server.GRPCEnabled,
		},
		Dashboard: DashboardData{
			PageTitle:   yamlConfig.Dashboard.PageTitle,
			DefaultYear: yamlConfig.Dashboard.DefaultYear,
			ChartWidth:  yamlConfig.Dashboard.ChartWidth,
			ChartHeight: yamlConfig.Dashboard.ChartHeight,
		},
		Log: LogData{
			File:       yamlConfig.Log.File,
			MaxSizeMB:  yamlConfig.Log.MaxSizeMB,
			MaxBackups: yamlConfig.Log.MaxBackups,
			MaxAgeDays: yamlConfig.Log.MaxAgeDays,
		},
	}, nil
}

// IsReadOnly returns true as YAML files are read-only in this implementation
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with yaml tags

type DatasetYAML struct {
	Source           string `yaml:"source,omitempty"`
	Path             string `yaml:"path,omitempty"`
	ConnectionString string `yaml:"connection-string,omitempty"`
	Table            string `yaml:"table,omitempty"`
}

type ServerYAML struct {
	ListenAddr  string `yaml:"listen-addr,omitempty"`
	Port        int    `yaml:"port,omitempty"`
	TLSCert     string `yaml:"tls-cert,omitempty"`
	TLSKey      string `yaml:"tls-key,omitempty"`
	GRPCEnabled bool   `yaml:"grpc-enabled,omitempty"`
}

type DashboardYAML struct {
	PageTitle   string `yaml:"page-title,omitempty"`
	DefaultYear int    `yaml:"default-year,omitempty"`
	ChartWidth  int    `yaml:"chart-width,omitempty"`
	ChartHeight int    `yaml:"chart-height,omitempty"`
}

type LogYAML struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
	MaxAgeDays int    `yaml:"max-age-days,omitempty"`
}
