package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "processing.yml"

	envConfigPath = "CUCKOO_PROCESSING_CONFIG"
)

// Module holds the enablement flag and free-form options for one plugin.
// Plugins without a section in the configuration file are enabled with no
// options.
type Module struct {
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

// Int returns the named option as an int, or def when absent or mistyped.
func (m Module) Int(key string, def int) int {
	switch v := m.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// String returns the named option as a string, or def when absent.
func (m Module) String(key, def string) string {
	if v, ok := m.Options[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Bool returns the named option as a bool, or def when absent.
func (m Module) Bool(key string, def bool) bool {
	if v, ok := m.Options[key].(bool); ok {
		return v
	}
	return def
}

// Provider resolves per-plugin configuration from a processing.yml file.
type Provider struct {
	modules    map[string]Module
	signatures map[string]Module
}

type rawConfig struct {
	Modules    map[string]*rawSection `yaml:"modules"`
	Signatures map[string]*rawSection `yaml:"signatures"`
}

// rawSection distinguishes an absent enabled field from an explicit false.
type rawSection struct {
	Enabled *bool                  `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

// Default returns a provider with no file-backed sections: every plugin is
// enabled with empty options.
func Default() *Provider {
	return &Provider{
		modules:    map[string]Module{},
		signatures: map[string]Module{},
	}
}

// Load reads the configuration file at path. An empty path falls back to
// the CUCKOO_PROCESSING_CONFIG environment variable and then to
// processing.yml; a missing file is not an error and yields defaults.
func Load(path string) (*Provider, error) {
	resolved := ResolvePath(path)
	if !fileExists(resolved) {
		return Default(), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, err
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", resolved, err)
	}

	provider := Default()
	for name, section := range raw.Modules {
		provider.modules[normalize(name)] = section.toModule()
	}
	for name, section := range raw.Signatures {
		provider.signatures[normalize(name)] = section.toModule()
	}

	return provider, nil
}

// ResolvePath picks the effective config path from the explicit argument,
// the environment, or the default location, in that order.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(envConfigPath); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Module returns configuration for the named processing module.
func (p *Provider) Module(name string) Module {
	if cfg, ok := p.modules[normalize(name)]; ok {
		return cfg
	}
	return Module{Enabled: true}
}

// Signature returns configuration for the named signature.
func (p *Provider) Signature(name string) Module {
	if cfg, ok := p.signatures[normalize(name)]; ok {
		return cfg
	}
	return Module{Enabled: true}
}

// SetModule overrides one module section. Used by tests and by init when
// generating a starter file.
func (p *Provider) SetModule(name string, cfg Module) {
	p.modules[normalize(name)] = cfg
}

// SetSignature overrides one signature section.
func (p *Provider) SetSignature(name string, cfg Module) {
	p.signatures[normalize(name)] = cfg
}

func (s *rawSection) toModule() Module {
	if s == nil {
		return Module{Enabled: true}
	}

	cfg := Module{Enabled: true, Options: s.Options}
	if s.Enabled != nil {
		cfg.Enabled = *s.Enabled
	}
	return cfg
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
