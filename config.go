package serp

import (
	"strings"
	"time"
)

// Search providers.
const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderSearXNG    = "searxng"
)

// DefaultUserAgent is sent with page and search requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Config holds application defaults. Values may come from a config file and
// are overridden by command-line flags.
type Config struct {
	Count     int           `yaml:"count"`
	Delay     time.Duration `yaml:"delay"`
	Timeout   time.Duration `yaml:"timeout"`
	OutputDir string        `yaml:"output_dir"`
	UserAgent string        `yaml:"user_agent"`

	Search SearchConfig `yaml:"search"`

	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
}

// SearchConfig selects and configures the URL source.
type SearchConfig struct {
	Provider   string `yaml:"provider"`
	SearXNGURL string `yaml:"searxng_url"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Count:     10,
		Delay:     2 * time.Second,
		Timeout:   10 * time.Second,
		OutputDir: "output",
		UserAgent: DefaultUserAgent,
		Search: SearchConfig{
			Provider:   ProviderDuckDuckGo,
			SearXNGURL: "http://localhost:8888",
		},
		Addr: "localhost:8501",
	}
}

// Validate returns an error if the configuration cannot be used.
func (c *Config) Validate() error {
	if c.Count < MinCount || c.Count > MaxCount {
		return Errorf(EINVALID, "count must be between %d and %d, got %d", MinCount, MaxCount, c.Count)
	}
	if c.Delay < MinDelay || c.Delay > MaxDelay {
		return Errorf(EINVALID, "delay must be between %s and %s, got %s", MinDelay, MaxDelay, c.Delay)
	}
	if c.Timeout <= 0 {
		return Errorf(EINVALID, "timeout must be positive, got %s", c.Timeout)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return Errorf(EINVALID, "output directory required")
	}
	switch c.Search.Provider {
	case ProviderDuckDuckGo:
	case ProviderSearXNG:
		if c.Search.SearXNGURL == "" {
			return Errorf(EINVALID, "searxng_url required for provider %q", ProviderSearXNG)
		}
	default:
		return Errorf(EINVALID, "unknown search provider %q", c.Search.Provider)
	}
	return nil
}

// Params returns run parameters for query using the configured defaults.
func (c *Config) Params(query string) Params {
	return Params{Query: query, Count: c.Count, Delay: c.Delay}
}
