package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsontyper/internal/converter"
	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/naming"
)

// Config represents the complete configuration for jsontyper
type Config struct {
	// Name of the root type
	RootName string `yaml:"root_name"`

	// Prefix for every synthesized type name except the root
	TypePrefix string `yaml:"type_prefix"`

	// Record inference
	Records RecordsConfig `yaml:"records"`

	// Type naming
	Naming NamingConfig `yaml:"naming"`

	// Sample input
	Input InputConfig `yaml:"input"`

	// Rendered output
	Output OutputConfig `yaml:"output"`

	// HTTP service
	Server ServerConfig `yaml:"server"`

	// Development settings
	Dev DevConfig `yaml:"dev"`
}

// RecordsConfig controls the shape of inferred records
type RecordsConfig struct {
	Closed         bool `yaml:"closed"`
	NullAsOptional bool `yaml:"null_as_optional"`
}

// NamingConfig controls type names
type NamingConfig struct {
	Style         string   `yaml:"style"`
	ExistingNames []string `yaml:"existing_names"`
}

// InputConfig describes the sample document
type InputConfig struct {
	Format string `yaml:"format"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format    string `yaml:"format"`
	Inline    bool   `yaml:"inline"`
	MultiLine bool   `yaml:"multiline"`
	Indent    string `yaml:"indent"`
}

// ServerConfig controls the conversion service
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	CacheSize int    `yaml:"cache_size"`
}

// DevConfig controls development settings
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Environment variables read by LoadServerEnv.
const (
	EnvAddr      = "JSONTYPER_ADDR"
	EnvCacheSize = "JSONTYPER_CACHE_SIZE"
	EnvConfig    = "JSONTYPER_CONFIG"
)

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Records: RecordsConfig{
			Closed: true,
		},
		Naming: NamingConfig{
			Style: string(naming.StyleCapitalize),
		},
		Input: InputConfig{
			Format: string(converter.InputJSON),
		},
		Output: OutputConfig{
			Format: string(converter.FormatText),
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 256,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := NewConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError(fmt.Sprintf("config file not found: %s", configPath), err)
		}
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file: %s", configPath), err)
	}

	// Start with defaults and overlay the file
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file: %s", configPath), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FindConfigFile searches for a config file in the current directory and parent directories
func FindConfigFile() string {
	configNames := []string{".jsontyper.yml", ".jsontyper.yaml", "jsontyper.yml", "jsontyper.yaml"}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Validate rejects settings no component understands.
func (c *Config) Validate() error {
	switch naming.Style(c.Naming.Style) {
	case naming.StyleCapitalize, naming.StylePascal:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown naming style '%s'", c.Naming.Style), nil)
	}

	switch converter.InputFormat(c.Input.Format) {
	case converter.InputJSON, converter.InputYAML:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown input format '%s'", c.Input.Format), nil)
	}

	switch converter.Format(c.Output.Format) {
	case converter.FormatText, converter.FormatTypeData, converter.FormatJSONSchema:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown output format '%s'", c.Output.Format), errors.ErrUnknownFormat)
	}

	if c.Server.CacheSize < 0 {
		return errors.NewConfigError("server cache size must not be negative", nil)
	}
	return nil
}

// MergeConfigs merges CLI overrides with file-based configuration
func MergeConfigs(base *Config, override *Config) *Config {
	result := *base
	result.Naming.ExistingNames = append([]string(nil), base.Naming.ExistingNames...)

	if override.RootName != "" {
		result.RootName = override.RootName
	}
	if override.TypePrefix != "" {
		result.TypePrefix = override.TypePrefix
	}
	if override.Naming.Style != "" {
		result.Naming.Style = override.Naming.Style
	}
	if override.Input.Format != "" {
		result.Input.Format = override.Input.Format
	}
	if override.Output.Format != "" {
		result.Output.Format = override.Output.Format
	}
	if override.Output.Indent != "" {
		result.Output.Indent = override.Output.Indent
	}
	if override.Server.Addr != "" {
		result.Server.Addr = override.Server.Addr
	}
	if override.Server.CacheSize != 0 {
		result.Server.CacheSize = override.Server.CacheSize
	}

	// Boolean switches only turn settings on
	result.Records.NullAsOptional = result.Records.NullAsOptional || override.Records.NullAsOptional
	result.Output.Inline = result.Output.Inline || override.Output.Inline
	result.Output.MultiLine = result.Output.MultiLine || override.Output.MultiLine
	result.Dev.Debug = result.Dev.Debug || override.Dev.Debug

	result.Naming.ExistingNames = append(result.Naming.ExistingNames, override.Naming.ExistingNames...)

	return &result
}

// CLIOverrides are the settings a command line can change.
type CLIOverrides struct {
	RootName       string
	TypePrefix     string
	NameStyle      string
	InputFormat    string
	OutputFormat   string
	Open           bool
	NullAsOptional bool
	Inline         bool
	MultiLine      bool
	ExistingNames  []string
	Debug          bool
}

// LoadConfigWithCLI loads configuration with CLI overrides
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	if configPath == "" {
		configPath = FindConfigFile()
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	override := &Config{
		RootName:   cli.RootName,
		TypePrefix: cli.TypePrefix,
		Records:    RecordsConfig{NullAsOptional: cli.NullAsOptional},
		Naming:     NamingConfig{Style: cli.NameStyle, ExistingNames: cli.ExistingNames},
		Input:      InputConfig{Format: cli.InputFormat},
		Output:     OutputConfig{Format: cli.OutputFormat, Inline: cli.Inline, MultiLine: cli.MultiLine},
		Dev:        DevConfig{Debug: cli.Debug},
	}
	merged := MergeConfigs(config, override)
	if cli.Open {
		merged.Records.Closed = false
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadServerEnv applies service settings from the environment. A .env file
// in the working directory is loaded first when present.
func LoadServerEnv(config *Config) error {
	_ = godotenv.Load()

	if addr := strings.TrimSpace(os.Getenv(EnvAddr)); addr != "" {
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		config.Server.Addr = addr
	}

	if raw := strings.TrimSpace(os.Getenv(EnvCacheSize)); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			return errors.NewConfigError(fmt.Sprintf("invalid %s value '%s'", EnvCacheSize, raw), err)
		}
		config.Server.CacheSize = size
	}
	return nil
}

// ConfigPathFromEnv returns the config file named by JSONTYPER_CONFIG.
func ConfigPathFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvConfig))
}

// Request builds the conversion request for a sample document.
func (c *Config) Request(sample string) converter.Request {
	return converter.Request{
		JSON:           sample,
		InputFormat:    converter.InputFormat(c.Input.Format),
		RootName:       c.RootName,
		TypeNamePrefix: c.TypePrefix,
		NameStyle:      naming.Style(c.Naming.Style),
		IsClosed:       c.Records.Closed,
		Inline:         c.Output.Inline,
		NullAsOptional: c.Records.NullAsOptional,
		ExistingNames:  append([]string(nil), c.Naming.ExistingNames...),
	}
}

// RenderOptions returns the rendering settings.
func (c *Config) RenderOptions() converter.RenderOptions {
	return converter.RenderOptions{
		Format:    converter.Format(c.Output.Format),
		MultiLine: c.Output.MultiLine,
		Indent:    c.Output.Indent,
	}
}
