package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config models twintrack.yml.
type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Media struct {
		CloudName    string `yaml:"cloud_name"`
		UploadPreset string `yaml:"upload_preset"`
	} `yaml:"media"`
	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`
	Listing struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"listing"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with tt config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config.api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("config.api.base_url must start with http:// or https://")
	}
	if c.Listing.PageSize < 0 {
		return fmt.Errorf("config.listing.page_size must not be negative")
	}
	if (c.Media.CloudName == "") != (c.Media.UploadPreset == "") {
		return fmt.Errorf("config.media requires both cloud_name and upload_preset")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "twintrack.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(baseURL string) string {
	return fmt.Sprintf(defaultTemplate, baseURL)
}

// Default returns the default Config struct.
func Default(baseURL string) *Config {
	var cfg Config
	cfg.API.BaseURL = baseURL
	_ = yaml.NewDecoder(bytes.NewBufferString(fmt.Sprintf(defaultTemplate, baseURL))).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// PageSize returns the configured worker listing page size or the
// default of 20.
func (c *Config) PageSize() int {
	if c.Listing.PageSize > 0 {
		return c.Listing.PageSize
	}
	return 20
}

const defaultTemplate = `api:
  base_url: %s
  timeout: 15s

media:
  cloud_name: ""
  upload_preset: ""

session:
  path: ""

listing:
  page_size: 20
`
