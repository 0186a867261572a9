// Package config loads the workspace configuration for the language
// backend: which dialects are served, where their compilers live, and which
// external header directories feed the static symbol tier.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configDirName = ".sslsense"

// Language describes one served dialect.
type Language struct {
	ID         string   `yaml:"id"`
	Extensions []string `yaml:"extensions"`
	// HeaderExtensions marks the subset of files whose declarations feed
	// the workspace-wide and external symbol tiers.
	HeaderExtensions []string `yaml:"header_extensions"`
	// Compiler is the argv template for compile-on-save. The file path is
	// appended as the last argument.
	Compiler []string `yaml:"compiler"`
	// HeaderDirs are directories outside the workspace whose headers load
	// into the static tier once at startup.
	HeaderDirs []string `yaml:"header_dirs"`
}

// CompletionConfig bounds completion responses.
type CompletionConfig struct {
	MaxItems int `yaml:"max_items"`
}

// DiagnosticsConfig toggles compile-on-save behavior.
type DiagnosticsConfig struct {
	OnSave  bool `yaml:"on_save"`
	Timeout int  `yaml:"timeout_seconds"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	File string `yaml:"file"`
}

// Config matches .sslsense/config.yaml inside the workspace.
type Config struct {
	Version     string            `yaml:"version"`
	Languages   []Language        `yaml:"languages"`
	Completion  CompletionConfig  `yaml:"completion"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultPath returns .sslsense/config.yaml within the workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// CachePath returns the symbol cache database path for the workspace.
func CachePath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "symbols.db")
}

// Default returns the built-in configuration for the two served dialects.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Languages: []Language{
			{
				ID:               "fallout-ssl",
				Extensions:       []string{".ssl", ".h"},
				HeaderExtensions: []string{".h"},
				Compiler:         []string{"compile", "-q", "-p", "-l"},
			},
			{
				ID:               "weidu-tp2",
				Extensions:       []string{".tp2", ".tph", ".tpa"},
				HeaderExtensions: []string{".tph", ".tpa"},
				Compiler:         []string{"weidu", "--no-exit-pause", "--noautoupdate"},
			},
		},
		Completion:  CompletionConfig{MaxItems: 200},
		Diagnostics: DiagnosticsConfig{OnSave: true, Timeout: 30},
	}
}

// Load reads the config at path or returns defaults when the file is
// missing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Completion.MaxItems <= 0 {
		cfg.Completion.MaxItems = 200
	}
	return cfg, nil
}

// LanguageByID finds a language definition.
func (c *Config) LanguageByID(id string) (Language, bool) {
	for _, lang := range c.Languages {
		if lang.ID == id {
			return lang, true
		}
	}
	return Language{}, false
}

// LanguageForPath matches a file to its language by extension,
// case-insensitively.
func (c *Config) LanguageForPath(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, lang := range c.Languages {
		for _, candidate := range lang.Extensions {
			if strings.ToLower(candidate) == ext {
				return lang, true
			}
		}
	}
	return Language{}, false
}
