package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config is the file form of the configuration. Function-valued settings
// are names looked up in a Registry.
type Config struct {
	CollectTypes       []string          `json:"collectTypes,omitempty" yaml:"collectTypes,omitempty"`
	FilterLog          string            `json:"filterLog,omitempty" yaml:"filterLog,omitempty"`
	KeepLog            string            `json:"keepLog,omitempty" yaml:"keepLog,omitempty"`
	CompactLogs        *int              `json:"compactLogs,omitempty" yaml:"compactLogs,omitempty"`
	OutputRoot         string            `json:"outputRoot,omitempty" yaml:"outputRoot,omitempty"`
	SpecRoot           string            `json:"specRoot,omitempty" yaml:"specRoot,omitempty"`
	OutputTarget       map[string]string `json:"outputTarget,omitempty" yaml:"outputTarget,omitempty"`
	PrintLogsToConsole string            `json:"printLogsToConsole,omitempty" yaml:"printLogsToConsole,omitempty"`
	PrintLogsToFile    string            `json:"printLogsToFile,omitempty" yaml:"printLogsToFile,omitempty"`
	NestedOutput       *bool             `json:"nestedOutput,omitempty" yaml:"nestedOutput,omitempty"`
	CollectTestLogs    string            `json:"collectTestLogs,omitempty" yaml:"collectTestLogs,omitempty"`
	XHR                *XHRConfig        `json:"xhr,omitempty" yaml:"xhr,omitempty"`
	ASCIIIcons         *bool             `json:"asciiIcons,omitempty" yaml:"asciiIcons,omitempty"`
}

// XHRConfig controls which network detail parts are kept.
type XHRConfig struct {
	PrintRequestData *bool `json:"printRequestData,omitempty" yaml:"printRequestData,omitempty"`
	PrintHeaderData  *bool `json:"printHeaderData,omitempty" yaml:"printHeaderData,omitempty"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetNestedOutput returns the nested output setting, defaulting to false
func (c *Config) GetNestedOutput() bool {
	return getBool(c.NestedOutput, false)
}

// GetPrintRequestData returns the xhr request data setting, defaulting to false
func (c *Config) GetPrintRequestData() bool {
	if c.XHR == nil {
		return false
	}
	return getBool(c.XHR.PrintRequestData, false)
}

// GetPrintHeaderData returns the xhr header data setting, defaulting to false
func (c *Config) GetPrintHeaderData() bool {
	if c.XHR == nil {
		return false
	}
	return getBool(c.XHR.PrintHeaderData, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".termreport.json",
	"termreport.json",
	".termreport.yaml",
	".termreport.yml",
	"termreport.yaml",
	"termreport.yml",
}

// LoadConfig loads configuration from path, or searches the current
// directory when path is empty.
func LoadConfig(path string, reg *Registry) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path, reg)
	}
	return FindAndLoadConfig(".", reg)
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string, reg *Registry) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath, reg)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string, reg *Registry) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	cfg, err := Parse(data, ext == ".yaml" || ext == ".yml", reg)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document. Schema violations
// are returned together as a *ValidationError.
func Parse(data []byte, isYAML bool, reg *Registry) (*Config, error) {
	doc, err := toJSON(data, isYAML)
	if err != nil {
		return nil, err
	}
	if err := Validate(doc, reg); err != nil {
		return nil, err
	}

	config := DefaultConfig()
	dec := json.NewDecoder(bytes.NewReader(doc))
	if err := dec.Decode(config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return config, nil
}

// toJSON normalizes YAML documents to JSON so a single schema applies.
func toJSON(data []byte, isYAML bool) ([]byte, error) {
	if !isYAML {
		if !json.Valid(data) {
			return nil, errors.New("config is not valid JSON")
		}
		return data, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing YAML config")
	}
	if doc == nil {
		doc = map[string]any{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "converting YAML config")
	}
	return out, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if len(other.CollectTypes) > 0 {
		result.CollectTypes = other.CollectTypes
	}
	if other.FilterLog != "" {
		result.FilterLog = other.FilterLog
	}
	if other.KeepLog != "" {
		result.KeepLog = other.KeepLog
	}
	if other.CompactLogs != nil {
		result.CompactLogs = other.CompactLogs
	}
	if other.OutputRoot != "" {
		result.OutputRoot = other.OutputRoot
	}
	if other.SpecRoot != "" {
		result.SpecRoot = other.SpecRoot
	}
	if other.PrintLogsToConsole != "" {
		result.PrintLogsToConsole = other.PrintLogsToConsole
	}
	if other.PrintLogsToFile != "" {
		result.PrintLogsToFile = other.PrintLogsToFile
	}
	if other.CollectTestLogs != "" {
		result.CollectTestLogs = other.CollectTestLogs
	}

	// Pointers only override if explicitly set in other config
	if other.NestedOutput != nil {
		result.NestedOutput = other.NestedOutput
	}
	if other.ASCIIIcons != nil {
		result.ASCIIIcons = other.ASCIIIcons
	}
	if other.XHR != nil {
		xhr := XHRConfig{}
		if result.XHR != nil {
			xhr = *result.XHR
		}
		if other.XHR.PrintRequestData != nil {
			xhr.PrintRequestData = other.XHR.PrintRequestData
		}
		if other.XHR.PrintHeaderData != nil {
			xhr.PrintHeaderData = other.XHR.PrintHeaderData
		}
		result.XHR = &xhr
	}

	if len(other.OutputTarget) > 0 {
		targets := make(map[string]string, len(result.OutputTarget)+len(other.OutputTarget))
		for k, v := range result.OutputTarget {
			targets[k] = v
		}
		for k, v := range other.OutputTarget {
			targets[k] = v
		}
		result.OutputTarget = targets
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
