package goethe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/goethe/compress"
)

// Config is the YAML configuration of a Manager.
type Config struct {
	// Backend names the backend to use; empty selects the best available one.
	Backend string `yaml:"backend"`
	// Statistics toggles statistics recording. Omitted means enabled.
	Statistics *bool `yaml:"statistics,omitempty"`
	// Options, when present, are applied to the selected backend.
	Options *compress.Options `yaml:"options,omitempty"`
}

// StatisticsEnabled resolves the Statistics default.
func (c Config) StatisticsEnabled() bool {
	return c.Statistics == nil || *c.Statistics
}

// ParseConfig decodes a YAML document. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads and decodes the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return ParseConfig(data)
}

// ApplyConfig initializes the Manager with cfg.Backend, applies cfg.Options
// when set, and toggles statistics.
func (m *Manager) ApplyConfig(cfg Config) error {
	if err := m.Initialize(cfg.Backend); err != nil {
		return err
	}
	if cfg.Options != nil {
		if err := m.SetOptions(*cfg.Options); err != nil {
			return fmt.Errorf("apply options: %w", err)
		}
	}
	m.EnableStatistics(cfg.StatisticsEnabled())

	m.logger.Info("compression config applied",
		zap.String("backend", m.BackendName()),
		zap.Bool("statistics", cfg.StatisticsEnabled()),
		zap.Bool("options", cfg.Options != nil),
	)

	return nil
}
