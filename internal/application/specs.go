package application

import (
	"github.com/tfgate/tfgate/internal/domain"
)

// Job names are stable identifiers used in reports and exit-code mapping.
const (
	JobLint     = "lint"
	JobSecurity = "security"
	JobDocs     = "docs"
	JobDeps     = "deps"
)

// PipelineSpecs returns the built-in job specs in report order. Argv fields
// use ${placeholder} templates resolved against the RunConfiguration at
// execution time.
func PipelineSpecs(cfg domain.RunConfiguration) []domain.JobSpec {
	jobs := []domain.JobSpec{
		{
			Name: JobLint,
			Gate: LintGate,
			Steps: []domain.StepSpec{
				{
					Name: "setup",
					Argv: []string{versionManager(cfg.Tool), "install", "${tool_version}"},
				},
				{
					Name: "fmt-check",
					Argv: []string{"${tool}", "fmt", "-check", "-recursive"},
				},
				{
					Name: "init",
					Argv: []string{"${tool}", "init", "-backend=false", "-input=false"},
				},
				{
					Name: "validate",
					Argv: []string{"${tool}", "-chdir=${validate_dir}", "validate"},
					Dir:  ".",
				},
				{
					Name: "tflint",
					Argv: []string{"tflint", "--chdir", "${working_dir}"},
					Dir:  ".",
				},
			},
		},
		{
			Name: JobSecurity,
			Gate: SecurityGate,
			Steps: []domain.StepSpec{
				{
					Name: "checkov",
					Argv: []string{"checkov", "--directory", "${working_dir}"},
					Dir:  ".",
				},
				{
					Name: "tfsec",
					Argv: []string{"tfsec", "${working_dir}"},
					Dir:  ".",
				},
			},
		},
		{
			Name: JobDocs,
			Gate: DocsGate,
			Steps: []domain.StepSpec{
				{
					Name: "generate",
					Argv: []string{"terraform-docs", "markdown", "table", "--output-file", "${docs_output}", "."},
				},
				{
					// git diff --quiet exits 1 when the generated file
					// differs from HEAD. Recorded, never fails the job:
					// it only decides whether the commit step runs.
					Name:              "diff",
					Argv:              []string{"git", "diff", "--quiet", "--", "${docs_output}"},
					ContinueOnFailure: true,
				},
				{
					Name:      "commit",
					Argv:      []string{"git", "commit", "-am", "docs: update module documentation"},
					Condition: docsChanged,
				},
			},
		},
		{
			Name: JobDeps,
			Gate: DepsGate,
			Steps: []domain.StepSpec{
				{
					Name:      "renovate",
					Argv:      []string{"renovate"},
					Dir:       ".",
					Env:       renovateEnv(cfg),
					SecretEnv: []string{"RENOVATE_TOKEN"},
				},
			},
		},
	}
	return jobs
}

// docsChanged is the commit-step condition: commit only when the diff step
// reported changes (exit 1), keeping regeneration idempotent.
func docsChanged(prior []domain.StepResult) bool {
	for _, s := range prior {
		if s.Name == "diff" {
			return s.Status == domain.StatusFailed && s.ExitCode == 1
		}
	}
	return false
}

func versionManager(tool domain.ToolKind) string {
	if tool == domain.ToolTofu {
		return "tofuenv"
	}
	return "tfenv"
}

func renovateEnv(cfg domain.RunConfiguration) []string {
	env := []string{"RENOVATE_CONFIG_FILE=${renovate_config}"}
	if cfg.RenovateDebug {
		env = append(env, "LOG_LEVEL=debug")
	}
	return env
}
