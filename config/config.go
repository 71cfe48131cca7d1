package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "MCP_NVIDIA_CONFIG"
	domainsEnv      = "MCP_NVIDIA_DOMAINS"
	allowedRootsEnv = "MCP_NVIDIA_ALLOWED_ROOTS"
	logLevelEnv     = "MCP_NVIDIA_LOG_LEVEL"
	apiKeyEnv       = "SERPAPI_API_KEY"
	engineEnv       = "SEARCH_ENGINE"
	baseURLEnv      = "SEARCH_BASE_URL"
	proxyURLEnv     = "PROXY_URL"
	httpAddrEnv     = "HTTP_ADDR"
)

// Config is read once at startup and never modified afterwards.
type Config struct {
	AllowedRoots []string     `yaml:"allowed_roots"`
	Domains      []string     `yaml:"domains"`
	LogLevel     string       `yaml:"log_level"`
	HTTPAddr     string       `yaml:"http_addr"`
	Search       SearchConfig `yaml:"search"`
	Fetch        FetchConfig  `yaml:"fetch"`
	Limits       LimitsConfig `yaml:"limits"`
}

type SearchConfig struct {
	Engine         string        `yaml:"engine"`
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	RateInterval   time.Duration `yaml:"rate_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type FetchConfig struct {
	Timeout              time.Duration `yaml:"timeout"`
	MaxBodyBytes         int64         `yaml:"max_body_bytes"`
	MaxRedirects         int           `yaml:"max_redirects"`
	UserAgent            string        `yaml:"user_agent"`
	ProxyURL             string        `yaml:"proxy_url"`
	BlockPrivateNetworks bool          `yaml:"block_private_networks"`
}

type LimitsConfig struct {
	Concurrency             int           `yaml:"concurrency"`
	Deadline                time.Duration `yaml:"deadline"`
	DefaultResultsPerDomain int           `yaml:"default_results_per_domain"`
	MaxResultsPerDomain     int           `yaml:"max_results_per_domain"`
}

// DefaultDomains are searched when a request names none.
var DefaultDomains = []string{
	"https://developer.nvidia.com",
	"https://blogs.nvidia.com",
	"https://nvidianews.nvidia.com",
	"https://docs.nvidia.com",
	"https://build.nvidia.com",
	"https://forums.developer.nvidia.com",
	"https://research.nvidia.com",
	"https://catalog.ngc.nvidia.com",
}

func Default() *Config {
	return &Config{
		AllowedRoots: []string{"nvidia.com", "nvidia.github.io"},
		Domains:      append([]string(nil), DefaultDomains...),
		LogLevel:     "info",
		Search: SearchConfig{
			Engine:         "google",
			RateInterval:   200 * time.Millisecond,
			RequestTimeout: 10 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:              8 * time.Second,
			MaxBodyBytes:         2 << 20,
			MaxRedirects:         5,
			UserAgent:            "mcp-nvidia/1.0",
			BlockPrivateNetworks: true,
		},
		Limits: LimitsConfig{
			Concurrency:             5,
			Deadline:                25 * time.Second,
			DefaultResultsPerDomain: 3,
			MaxResultsPerDomain:     10,
		},
	}
}

// Load applies defaults, then .env, then the YAML file named by MCP_NVIDIA_CONFIG,
// then environment overrides, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(domainsEnv); v != "" {
		c.Domains = splitList(v)
	}
	if v := os.Getenv(allowedRootsEnv); v != "" {
		c.AllowedRoots = splitList(v)
	}
	setString(&c.LogLevel, logLevelEnv)
	setString(&c.Search.APIKey, apiKeyEnv)
	setString(&c.Search.Engine, engineEnv)
	setString(&c.Search.BaseURL, baseURLEnv)
	setString(&c.Fetch.ProxyURL, proxyURLEnv)
	setString(&c.HTTPAddr, httpAddrEnv)
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.AllowedRoots) == 0 {
		errs = append(errs, errors.New("allowed_roots must not be empty"))
	}
	if len(c.Domains) == 0 {
		errs = append(errs, errors.New("domains must not be empty"))
	}
	switch c.Search.Engine {
	case "google", "duckduckgo":
	default:
		errs = append(errs, fmt.Errorf("search.engine must be google or duckduckgo, got %q", c.Search.Engine))
	}
	if c.Search.RateInterval <= 0 {
		errs = append(errs, errors.New("search.rate_interval must be positive"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("fetch.max_body_bytes must be positive"))
	}
	if c.Fetch.MaxRedirects < 0 {
		errs = append(errs, errors.New("fetch.max_redirects must not be negative"))
	}
	if c.Limits.Concurrency < 1 {
		errs = append(errs, errors.New("limits.concurrency must be at least 1"))
	}
	if c.Limits.DefaultResultsPerDomain < 1 || c.Limits.DefaultResultsPerDomain > c.Limits.MaxResultsPerDomain {
		errs = append(errs, errors.New("limits.default_results_per_domain must be between 1 and limits.max_results_per_domain"))
	}
	if c.Limits.MaxResultsPerDomain > 10 {
		errs = append(errs, errors.New("limits.max_results_per_domain must not exceed 10"))
	}
	if c.Limits.Deadline <= c.Fetch.Timeout {
		errs = append(errs, errors.New("limits.deadline must exceed fetch.timeout"))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
