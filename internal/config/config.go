package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is one tracked site: a display name and the pages checked for it.
// Static configuration, never mutated at runtime.
type Source struct {
	Name string   `yaml:"name"`
	URLs []string `yaml:"urls"`
}

type Config struct {
	Schedule            string           `yaml:"schedule"`
	RunOnStart          bool             `yaml:"run_on_start"`
	DataDir             string           `yaml:"data_dir"`
	SnapshotDir         string           `yaml:"snapshot_dir"`
	FetchTimeoutSeconds int              `yaml:"fetch_timeout_seconds"`
	Summarizer          SummarizerConfig `yaml:"summarizer"`
	Web                 WebConfig        `yaml:"web"`
	Platforms           []Source         `yaml:"platforms"`
	PolicySources       []Source         `yaml:"policy_sources"`
}

type SummarizerConfig struct {
	Model string `yaml:"model"`
	// APIKey may be empty: the summarizer then degrades to fixed fallback
	// text instead of calling the external service.
	APIKey           string `yaml:"api_key"`
	MaxTokens        int    `yaml:"max_tokens"`
	MaxContentChars  int    `yaml:"max_content_chars"`
	MaxPreviousChars int    `yaml:"max_previous_chars"`
}

type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func defaultPlatforms() []Source {
	return []Source{
		{Name: "OpenAI", URLs: []string{
			"https://openai.com/policies/terms-of-use",
			"https://openai.com/policies/privacy-policy",
		}},
		{Name: "Anthropic", URLs: []string{
			"https://www.anthropic.com/legal/consumer-terms",
			"https://www.anthropic.com/legal/privacy",
		}},
		{Name: "Google Gemini", URLs: []string{
			"https://policies.google.com/terms",
		}},
		{Name: "Microsoft Copilot", URLs: []string{
			"https://www.microsoft.com/en-us/servicesagreement",
		}},
	}
}

func defaultPolicySources() []Source {
	return []Source{
		{Name: "Industry Dept", URLs: []string{
			"https://www.industry.gov.au/publications/australias-artificial-intelligence-ethics-principles",
		}},
		{Name: "OAIC", URLs: []string{
			"https://www.oaic.gov.au/privacy/privacy-guidance-for-organisations-and-government-agencies/artificial-intelligence",
		}},
		{Name: "DTA", URLs: []string{
			"https://www.digital.gov.au/policy/ai",
		}},
	}
}

func setDefaults(cfg *Config) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 6 * * *"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = "snapshots"
	}
	if cfg.FetchTimeoutSeconds == 0 {
		cfg.FetchTimeoutSeconds = 30
	}
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Summarizer.APIKey == "" {
		cfg.Summarizer.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Summarizer.MaxTokens == 0 {
		cfg.Summarizer.MaxTokens = 1024
	}
	if cfg.Summarizer.MaxContentChars == 0 {
		cfg.Summarizer.MaxContentChars = 15000
	}
	if cfg.Summarizer.MaxPreviousChars == 0 {
		cfg.Summarizer.MaxPreviousChars = 10000
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}
	if len(cfg.Platforms) == 0 {
		cfg.Platforms = defaultPlatforms()
	}
	if len(cfg.PolicySources) == 0 {
		cfg.PolicySources = defaultPolicySources()
	}
}

func validate(cfg *Config) error {
	if cfg.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("config: fetch_timeout_seconds must be positive")
	}
	if cfg.Summarizer.MaxContentChars < 0 {
		return fmt.Errorf("config: summarizer.max_content_chars must be positive")
	}
	if cfg.Summarizer.MaxPreviousChars < 0 {
		return fmt.Errorf("config: summarizer.max_previous_chars must be positive")
	}
	for _, list := range [][]Source{cfg.Platforms, cfg.PolicySources} {
		for _, src := range list {
			if src.Name == "" {
				return fmt.Errorf("config: every source needs a name")
			}
			if len(src.URLs) == 0 {
				return fmt.Errorf("config: source %q has no urls", src.Name)
			}
		}
	}
	return nil
}

// Load reads the config file, expands environment variables, applies
// defaults, and validates the result. A missing file is not an error: the
// built-in source lists make a zero-config run work.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	default:
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
