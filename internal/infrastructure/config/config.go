package config

import (
	"os"
	"strconv"
	"time"

	"github.com/tfgate/tfgate/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Runner      string `yaml:"runner"`
	WorkingDir  string `yaml:"working_dir"`
	ValidateDir string `yaml:"validate_dir"`

	Tool struct {
		Kind    string `yaml:"kind"`
		Version string `yaml:"version"`
	} `yaml:"tool"`

	SecurityScan bool `yaml:"security_scan"`

	Docs struct {
		Enabled    bool   `yaml:"enabled"`
		OutputFile string `yaml:"output_file"`
	} `yaml:"docs"`

	AllowedPRAuthor string        `yaml:"allowed_pr_author"`
	StepTimeout     time.Duration `yaml:"step_timeout"`

	Renovate struct {
		ConfigFile string `yaml:"config_file"`
		Debug      bool   `yaml:"debug"`
	} `yaml:"renovate"`

	ReleaseAPI struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"release_api"`
}

// Load reads the optional YAML file and applies environment overrides.
// A missing file is not an error: every field has a resolver default.
func Load(path string) (Config, error) {
	var c Config

	c.ReleaseAPI.BaseURL = "https://api.github.com"
	c.ReleaseAPI.Timeout = 10 * time.Second

	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, err
			}
		}
	}

	if v := os.Getenv("TFGATE_RUNNER"); v != "" {
		c.Runner = v
	}
	if v := os.Getenv("TFGATE_WORKING_DIR"); v != "" {
		c.WorkingDir = v
	}
	if v := os.Getenv("TFGATE_VALIDATE_DIR"); v != "" {
		c.ValidateDir = v
	}
	if v := os.Getenv("TFGATE_TOOL"); v != "" {
		c.Tool.Kind = v
	}
	if v := os.Getenv("TFGATE_TOOL_VERSION"); v != "" {
		c.Tool.Version = v
	}
	if v := os.Getenv("TFGATE_SECURITY_SCAN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SecurityScan = b
		}
	}
	if v := os.Getenv("TFGATE_DOCS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Docs.Enabled = b
		}
	}
	if v := os.Getenv("TFGATE_DOCS_OUTPUT"); v != "" {
		c.Docs.OutputFile = v
	}
	if v := os.Getenv("TFGATE_ALLOWED_PR_AUTHOR"); v != "" {
		c.AllowedPRAuthor = v
	}
	if v := os.Getenv("TFGATE_STEP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.StepTimeout = d
		}
	}
	if v := os.Getenv("TFGATE_RELEASE_API"); v != "" {
		c.ReleaseAPI.BaseURL = v
	}

	return c, nil
}

// Partial maps the file/env configuration onto the domain type. Unset
// fields stay zero; the application resolver fills defaults and validates.
func (c Config) Partial() domain.RunConfiguration {
	return domain.RunConfiguration{
		Runner:             c.Runner,
		WorkingDir:         c.WorkingDir,
		ValidateDir:        c.ValidateDir,
		Tool:               domain.ToolKind(c.Tool.Kind),
		ToolVersion:        c.Tool.Version,
		EnableSecurityScan: c.SecurityScan,
		EnableDocs:         c.Docs.Enabled,
		DocsOutputFile:     c.Docs.OutputFile,
		AllowedPRAuthor:    c.AllowedPRAuthor,
		StepTimeout:        c.StepTimeout,
		RenovateConfig:     c.Renovate.ConfigFile,
		RenovateDebug:      c.Renovate.Debug,
	}
}

// Trigger derives the trigger context from the invoking environment.
// TFGATE_* variables win; the GitHub Actions ambient variables are the
// fallback so the orchestrator is a drop-in inside a workflow run.
func Trigger() domain.TriggerContext {
	return domain.TriggerContext{
		Kind:   domain.TriggerKind(firstEnv("TFGATE_EVENT", "GITHUB_EVENT_NAME")),
		Branch: firstEnv("TFGATE_BRANCH", "GITHUB_REF_NAME"),
		Actor:  firstEnv("TFGATE_ACTOR", "GITHUB_ACTOR"),
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
