package application

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tfgate/tfgate/internal/domain"
)

const (
	DefaultRunner         = "ubuntu-latest"
	DefaultWorkingDir     = "."
	DefaultDocsOutput     = "README.md"
	DefaultRenovateConfig = "renovate.json"
	DefaultStepTimeout    = 15 * time.Minute
)

// ResolveConfiguration completes a partial configuration: caller-supplied
// values win when set, declared defaults fill the rest. Pure function; the
// same partial input always yields the same resolved output.
func ResolveConfiguration(p domain.RunConfiguration) (domain.RunConfiguration, error) {
	c := p

	if c.Runner == "" {
		c.Runner = DefaultRunner
	}
	if c.WorkingDir == "" {
		c.WorkingDir = DefaultWorkingDir
	}
	if c.ValidateDir == "" {
		c.ValidateDir = c.WorkingDir
	}
	if c.Tool == "" {
		c.Tool = domain.ToolTerraform
	}
	if c.ToolVersion == "latest" {
		c.ToolVersion = ""
	}
	if c.DocsOutputFile == "" {
		c.DocsOutputFile = DefaultDocsOutput
	}
	if c.RenovateConfig == "" {
		c.RenovateConfig = DefaultRenovateConfig
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = DefaultStepTimeout
	}

	if c.Tool != domain.ToolTerraform && c.Tool != domain.ToolTofu {
		return c, fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidConfiguration, c.Tool)
	}

	for name, path := range map[string]string{
		"working_dir":      c.WorkingDir,
		"validate_dir":     c.ValidateDir,
		"docs_output_file": c.DocsOutputFile,
		"renovate_config":  c.RenovateConfig,
	} {
		if err := checkRepoRelative(name, path); err != nil {
			return c, err
		}
	}

	c.WorkingDir = filepath.Clean(c.WorkingDir)
	c.ValidateDir = filepath.Clean(c.ValidateDir)

	return c, nil
}

// checkRepoRelative rejects absolute paths and paths that traverse outside
// the repository root.
func checkRepoRelative(name, p string) error {
	if p == "" {
		return fmt.Errorf("%w: %s is empty", domain.ErrInvalidConfiguration, name)
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("%w: %s %q must be relative to the repository root", domain.ErrInvalidConfiguration, name, p)
	}
	clean := filepath.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s %q escapes the repository root", domain.ErrInvalidConfiguration, name, p)
	}
	return nil
}
