// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"ticket-resolve/internal/extract"
	"ticket-resolve/internal/paths"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format      string `yaml:"format"`
		Verbose     bool   `yaml:"verbose"`
		Debug       bool   `yaml:"debug"`
		NoColor     bool   `yaml:"no_color"`
		Recursive   bool   `yaml:"recursive"`
		DryRun      bool   `yaml:"dry_run"`
		Interactive bool   `yaml:"interactive"`
	} `yaml:"defaults"`

	// Ledger is the corrections ledger path; empty selects the standard
	// per-user location.
	Ledger string `yaml:"ledger"`

	// Dictionaries maps closed-vocabulary fields to CSV files.
	Dictionaries map[string]string `yaml:"dictionaries"`

	// Fields are the per-field extraction rules, applied in order.
	Fields []FieldConfig `yaml:"fields"`
}

// FieldConfig describes how one field is extracted from a page.
type FieldConfig struct {
	Name string `yaml:"name"`
	// Method is the primary extraction method: roi, below_label,
	// label_right or proximity.
	Method string   `yaml:"method"`
	Labels []string `yaml:"labels"`
	// ROI is [left, top, right, bottom] in normalized page coordinates;
	// required when Method is roi.
	ROI        []float64 `yaml:"roi"`
	Pattern    string    `yaml:"pattern"`
	Validation string    `yaml:"validation"`
	// Fallback names a secondary method tried when the primary result is
	// weak or missing.
	Fallback string `yaml:"fallback"`
	// Threshold is the primary-confidence floor that triggers the
	// fallback; zero selects the built-in default.
	Threshold float64 `yaml:"threshold"`
	// MaxDistance bounds proximity search; zero selects the default.
	MaxDistance float64 `yaml:"max_distance"`
	// Default is a last-resort value recorded at default precedence when
	// nothing else produces one.
	Default string `yaml:"default"`
}

// LoadConfig loads configuration from the specified file path. An empty
// path returns the built-in defaults, including the standard LDI haul
// ticket field set.
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// A config file with its own field list replaces the built-in set
	// entirely rather than merging with it.
	config.Fields = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if len(config.Fields) == 0 {
		config.Fields = defaultFields()
	}
	if config.Dictionaries == nil {
		config.Dictionaries = make(map[string]string)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration, falling back to the built-in
// defaults on any error.
func LoadConfigOrDefault(configPath string) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		return defaultConfig()
	}
	return config
}

// ValidateConfig checks the configuration for the errors a typo in the
// YAML commonly produces.
func ValidateConfig(config *Config) error {
	switch config.Defaults.Format {
	case "", "text", "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q", config.Defaults.Format)
	}

	for _, f := range config.Fields {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if !validMethod(f.Method) {
			return fmt.Errorf("field %s: unknown method %q", f.Name, f.Method)
		}
		if f.Fallback != "" && !validMethod(f.Fallback) {
			return fmt.Errorf("field %s: unknown fallback method %q", f.Name, f.Fallback)
		}
		if f.Method == extract.MethodROI && len(f.ROI) != 4 {
			return fmt.Errorf("field %s: roi method requires a 4-element roi", f.Name)
		}
		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				return fmt.Errorf("field %s: bad pattern: %w", f.Name, err)
			}
		}
		if f.Validation != "" {
			if _, err := regexp.Compile(f.Validation); err != nil {
				return fmt.Errorf("field %s: bad validation pattern: %w", f.Name, err)
			}
		}
	}
	return nil
}

func validMethod(method string) bool {
	switch method {
	case extract.MethodROI, extract.MethodBelowLabel, extract.MethodLabelRight, extract.MethodProximity:
		return true
	}
	return false
}

// Rules compiles the configured fields into executable extraction rules,
// in configuration order.
func (c *Config) Rules() ([]extract.FieldRule, error) {
	rules := make([]extract.FieldRule, 0, len(c.Fields))
	for _, f := range c.Fields {
		primary, err := f.buildRule(f.Method)
		if err != nil {
			return nil, err
		}
		rule := extract.FieldRule{Primary: primary, Threshold: f.Threshold}
		if f.Fallback != "" {
			fallback, err := f.buildRule(f.Fallback)
			if err != nil {
				return nil, err
			}
			rule.Fallback = fallback
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LedgerPath returns the configured corrections ledger path, or the
// standard per-user location when unset.
func (c *Config) LedgerPath() string {
	if c.Ledger != "" {
		return c.Ledger
	}
	return paths.GetLedgerFile()
}

// DefaultValues returns the configured per-field default values.
func (c *Config) DefaultValues() map[string]string {
	out := make(map[string]string)
	for _, f := range c.Fields {
		if f.Default != "" {
			out[f.Name] = f.Default
		}
	}
	return out
}

func (f FieldConfig) buildRule(method string) (extract.Rule, error) {
	var pattern, validation *regexp.Regexp
	var err error
	if f.Pattern != "" {
		if pattern, err = regexp.Compile(f.Pattern); err != nil {
			return nil, fmt.Errorf("field %s: bad pattern: %w", f.Name, err)
		}
	}
	if f.Validation != "" {
		if validation, err = regexp.Compile(f.Validation); err != nil {
			return nil, fmt.Errorf("field %s: bad validation pattern: %w", f.Name, err)
		}
	}

	switch method {
	case extract.MethodROI:
		if len(f.ROI) != 4 {
			return nil, fmt.Errorf("field %s: roi method requires a 4-element roi", f.Name)
		}
		return extract.ROIRule{
			FieldName: f.Name,
			Region: extract.BBox{
				Min: extract.Point{X: f.ROI[0], Y: f.ROI[1]},
				Max: extract.Point{X: f.ROI[2], Y: f.ROI[3]},
			},
			Labels:     f.Labels,
			Pattern:    pattern,
			Validation: validation,
		}, nil
	case extract.MethodBelowLabel:
		return extract.BelowLabelRule{
			FieldName:  f.Name,
			Labels:     f.Labels,
			Pattern:    pattern,
			Validation: validation,
		}, nil
	case extract.MethodLabelRight:
		return extract.LabelRightRule{
			FieldName:  f.Name,
			Labels:     f.Labels,
			Pattern:    pattern,
			Validation: validation,
		}, nil
	case extract.MethodProximity:
		return extract.ProximityRule{
			FieldName:   f.Name,
			Labels:      f.Labels,
			Pattern:     pattern,
			Validation:  validation,
			MaxDistance: f.MaxDistance,
		}, nil
	}
	return nil, fmt.Errorf("field %s: unknown method %q", f.Name, method)
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	// Check current directory first
	if fileExists("config.yaml") {
		return "config.yaml"
	}
	if fileExists("ticket-resolve.yaml") {
		return "ticket-resolve.yaml"
	}
	if fileExists("ticket-resolve.yml") {
		return "ticket-resolve.yml"
	}
	if fileExists(".ticket-resolve.yaml") {
		return ".ticket-resolve.yaml"
	}

	// Check standard per-user location
	standardConfig := paths.GetConfigFile()
	if fileExists(standardConfig) {
		return standardConfig
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

func defaultConfig() *Config {
	config := &Config{
		Dictionaries: make(map[string]string),
	}
	config.Defaults.Format = "text"
	config.Fields = defaultFields()
	return config
}

// defaultFields is the built-in rule set for LDI haul tickets: ticket
// number in the top-right corner, labeled date and manifest number,
// amounts and quantities to the right of their labels.
func defaultFields() []FieldConfig {
	return []FieldConfig{
		{
			Name:       "ticket_number",
			Method:     extract.MethodROI,
			ROI:        []float64{0.5, 0.0, 1.0, 0.2},
			Labels:     []string{"TICKET#", "Ticket No", "Ticket Number"},
			Pattern:    `[A-Z]{0,3}-?\d{5,7}`,
			Validation: `^(LDI-?\d{6}|[A-Z]{1,3}\d{5,7}|\d{5,7})$`,
			Fallback:   extract.MethodBelowLabel,
		},
		{
			Name:     "date",
			Method:   extract.MethodLabelRight,
			Labels:   []string{"Date", "Del Date", "Delivery Date"},
			Pattern:  `\d{1,4}[-/.]\d{1,2}[-/.]\d{2,4}|[A-Za-z]{3,9}\.? \d{1,2},? \d{4}`,
			Fallback: extract.MethodProximity,
		},
		{
			Name:     "manifest_number",
			Method:   extract.MethodBelowLabel,
			Labels:   []string{"Manifest Number", "Manifest No", "Manifest"},
			Pattern:  `[\dOIlSBZG-]{6,}`,
			Fallback: extract.MethodLabelRight,
		},
		{
			Name:    "quantity",
			Method:  extract.MethodLabelRight,
			Labels:  []string{"Qty", "Quantity", "Tons", "Loads"},
			Pattern: `\d+(?:\.\d+)?`,
		},
		{
			Name:     "material",
			Method:   extract.MethodLabelRight,
			Labels:   []string{"Material", "Material Description"},
			Fallback: extract.MethodBelowLabel,
		},
		{
			Name:   "vendor_name",
			Method: extract.MethodROI,
			ROI:    []float64{0.0, 0.0, 0.6, 0.15},
			Labels: []string{"Vendor", "Hauler"},
		},
		{
			Name:       "amount",
			Method:     extract.MethodLabelRight,
			Labels:     []string{"Amount", "Total", "Total Due"},
			Pattern:    `\$?\s*[\d,OIlSBZG]+(?:\.[\dOIlSBZG]{2})?`,
			Validation: `^\$?\s*[\d,.]+$`,
			Fallback:   extract.MethodProximity,
		},
	}
}
