package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tfgate/tfgate/internal/domain"
	"go.uber.org/zap"
)

// PipelineRunner evaluates gates, executes enabled jobs and aggregates the
// outcome. Independent jobs run in parallel; the docs job is serialized to
// run last because it is the only job that writes back to the repository.
type PipelineRunner struct {
	log      *zap.Logger
	runner   domain.CommandRunner
	resolver domain.VersionResolver
}

func NewPipelineRunner(log *zap.Logger, runner domain.CommandRunner, resolver domain.VersionResolver) *PipelineRunner {
	return &PipelineRunner{log: log, runner: runner, resolver: resolver}
}

func (r *PipelineRunner) Run(ctx context.Context, cfg domain.RunConfiguration, trig domain.TriggerContext) domain.PipelineResult {
	cfg = r.resolveVersion(ctx, cfg)
	specs := PipelineSpecs(cfg)

	results := make([]domain.JobResult, len(specs))
	done := make(chan struct{}, len(specs))
	parallel := 0

	docsIdx := -1
	for i := range specs {
		spec := specs[i]
		if spec.Name == JobDocs {
			docsIdx = i
			continue
		}

		dec := spec.Gate(cfg, trig)
		if !dec.Run {
			r.log.Info("job skipped", zap.String("job", spec.Name), zap.String("reason", dec.Reason))
			results[i] = domain.JobResult{Name: spec.Name, Status: domain.StatusSkipped, Reason: dec.Reason}
			continue
		}

		parallel++
		go func(i int, spec domain.JobSpec) {
			results[i] = r.runJob(ctx, cfg, spec)
			done <- struct{}{}
		}(i, spec)
	}
	for ; parallel > 0; parallel-- {
		<-done
	}

	if docsIdx >= 0 {
		results[docsIdx] = r.runDocs(ctx, cfg, trig, specs[docsIdx], results)
	}

	res := Aggregate(results)
	r.log.Info("pipeline finished", zap.String("status", string(res.Status)))
	return res
}

// runDocs applies the docs gate plus the runtime requirement that the lint
// job succeeded, then runs the job like any other.
func (r *PipelineRunner) runDocs(ctx context.Context, cfg domain.RunConfiguration, trig domain.TriggerContext, spec domain.JobSpec, prior []domain.JobResult) domain.JobResult {
	dec := spec.Gate(cfg, trig)
	if dec.Run {
		for _, jr := range prior {
			if jr.Name == JobLint && jr.Status != domain.StatusSucceeded {
				dec = domain.GateDecision{Run: false, Reason: "lint job did not succeed (" + string(jr.Status) + ")"}
			}
		}
	}
	if !dec.Run {
		r.log.Info("job skipped", zap.String("job", spec.Name), zap.String("reason", dec.Reason))
		return domain.JobResult{Name: spec.Name, Status: domain.StatusSkipped, Reason: dec.Reason}
	}
	return r.runJob(ctx, cfg, spec)
}

func (r *PipelineRunner) runJob(ctx context.Context, cfg domain.RunConfiguration, spec domain.JobSpec) domain.JobResult {
	start := time.Now()
	r.log.Info("job started", zap.String("job", spec.Name))

	res := domain.JobResult{Name: spec.Name, Status: domain.StatusRunning}
	rep := placeholders(cfg)

	var halted, cancelled, failed bool
	for _, st := range spec.Steps {
		switch {
		case cancelled:
			res.Steps = append(res.Steps, domain.StepResult{Name: st.Name, Status: domain.StatusCancelled, Message: "pipeline cancelled"})
			continue
		case halted:
			res.Steps = append(res.Steps, domain.StepResult{Name: st.Name, Status: domain.StatusSkipped, Message: "earlier step failed"})
			continue
		}

		if st.Condition != nil && !st.Condition(res.Steps) {
			res.Steps = append(res.Steps, domain.StepResult{Name: st.Name, Status: domain.StatusSkipped, Message: "condition not met"})
			continue
		}

		sr := r.runStep(ctx, cfg, rep, st)
		res.Steps = append(res.Steps, sr)

		switch sr.Status {
		case domain.StatusCancelled:
			cancelled = true
		case domain.StatusFailed:
			if !st.ContinueOnFailure {
				failed = true
				halted = true
			}
		}
	}

	switch {
	case cancelled:
		res.Status = domain.StatusCancelled
	case failed:
		res.Status = domain.StatusFailed
	default:
		res.Status = domain.StatusSucceeded
	}
	res.Duration = time.Since(start)

	r.log.Info("job finished",
		zap.String("job", spec.Name),
		zap.String("status", string(res.Status)),
		zap.Duration("took", res.Duration),
	)
	return res
}

func (r *PipelineRunner) runStep(ctx context.Context, cfg domain.RunConfiguration, rep *strings.Replacer, st domain.StepSpec) domain.StepResult {
	argv := make([]string, len(st.Argv))
	for i, a := range st.Argv {
		argv[i] = rep.Replace(a)
	}
	env := make([]string, len(st.Env))
	for i, e := range st.Env {
		env[i] = rep.Replace(e)
	}
	dir := cfg.WorkingDir
	if st.Dir != "" {
		dir = rep.Replace(st.Dir)
	}

	start := time.Now()
	out, err := r.runner.Run(ctx, domain.Command{
		Argv:      argv,
		Dir:       dir,
		Env:       env,
		SecretEnv: st.SecretEnv,
		Timeout:   cfg.StepTimeout,
	})
	elapsed := time.Since(start)

	sr := domain.StepResult{
		Name:     st.Name,
		ExitCode: out.ExitCode,
		Output:   out.Output,
		Duration: elapsed,
	}

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil):
		sr.Status = domain.StatusCancelled
		sr.Message = "pipeline cancelled"
	case err != nil:
		sr.Status = domain.StatusFailed
		sr.Message = err.Error()
		r.log.Warn("step failed", zap.String("step", st.Name), zap.Error(err))
	case exitOK(out.ExitCode, st.SuccessExitCodes):
		sr.Status = domain.StatusSucceeded
	default:
		sr.Status = domain.StatusFailed
		r.log.Warn("step failed",
			zap.String("step", st.Name),
			zap.Int("exit", out.ExitCode),
		)
	}
	return sr
}

func (r *PipelineRunner) resolveVersion(ctx context.Context, cfg domain.RunConfiguration) domain.RunConfiguration {
	if cfg.ToolVersion != "" {
		return cfg
	}
	if r.resolver == nil {
		cfg.ToolVersion = "latest"
		return cfg
	}
	v, err := r.resolver.Latest(ctx, cfg.Tool)
	if err != nil {
		// Advisory: a pinned "latest" still installs via the version
		// manager, so resolution failure never aborts the pipeline.
		r.log.Warn("version resolution failed", zap.String("tool", string(cfg.Tool)), zap.Error(err))
		cfg.ToolVersion = "latest"
		return cfg
	}
	r.log.Info("resolved tool version", zap.String("tool", string(cfg.Tool)), zap.String("version", v))
	cfg.ToolVersion = v
	return cfg
}

func placeholders(cfg domain.RunConfiguration) *strings.Replacer {
	return strings.NewReplacer(
		"${tool}", string(cfg.Tool),
		"${tool_version}", cfg.ToolVersion,
		"${working_dir}", cfg.WorkingDir,
		"${validate_dir}", cfg.ValidateDir,
		"${docs_output}", cfg.DocsOutputFile,
		"${renovate_config}", cfg.RenovateConfig,
	)
}

func exitOK(code int, allowed []int) bool {
	if len(allowed) == 0 {
		return code == 0
	}
	for _, a := range allowed {
		if a == code {
			return true
		}
	}
	return false
}
