package application

import (
	"time"

	"github.com/tfgate/tfgate/internal/domain"
)

// Exit codes, one per failure category so callers can tell what broke
// without parsing output. When several jobs fail the lowest category wins.
const (
	ExitOK            = 0
	ExitInvalidConfig = 1
	ExitLintFailed    = 2
	ExitScanFailed    = 3
	ExitDocsFailed    = 4
	ExitDepsFailed    = 5
	ExitCancelled     = 130
)

// Aggregate folds job results into the pipeline outcome. Failed if any
// non-skipped job failed; no-op if every job was skipped; else succeeded.
func Aggregate(jobs []domain.JobResult) domain.PipelineResult {
	res := domain.PipelineResult{
		Jobs:     jobs,
		Finished: time.Now().Unix(),
	}

	allSkipped := true
	anyFailed := false
	anyCancelled := false
	for _, j := range jobs {
		if j.Status != domain.StatusSkipped {
			allSkipped = false
		}
		if j.Status == domain.StatusFailed {
			anyFailed = true
		}
		if j.Status == domain.StatusCancelled {
			anyCancelled = true
		}
	}

	switch {
	case anyFailed:
		res.Status = domain.StatusFailed
	case anyCancelled:
		res.Status = domain.StatusCancelled
	case allSkipped:
		res.Status = domain.StatusNoOp
	default:
		res.Status = domain.StatusSucceeded
	}
	return res
}

// ExitCode maps a pipeline result to the process exit status.
func ExitCode(res domain.PipelineResult) int {
	if res.Status == domain.StatusCancelled {
		return ExitCancelled
	}
	if res.Status != domain.StatusFailed {
		return ExitOK
	}

	order := []struct {
		job  string
		code int
	}{
		{JobLint, ExitLintFailed},
		{JobSecurity, ExitScanFailed},
		{JobDocs, ExitDocsFailed},
		{JobDeps, ExitDepsFailed},
	}
	for _, o := range order {
		for _, j := range res.Jobs {
			if j.Name == o.job && j.Status == domain.StatusFailed {
				return o.code
			}
		}
	}
	return ExitLintFailed
}
