package execsh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/tfgate/tfgate/internal/domain"
)

// Executor runs one external tool per call as an isolated subprocess.
// It classifies outcomes but never interprets tool output: the exit code
// is the contract.
type Executor struct{}

func New() *Executor { return &Executor{} }

func (e *Executor) Run(ctx context.Context, c domain.Command) (domain.CommandResult, error) {
	if len(c.Argv) == 0 {
		return domain.CommandResult{}, fmt.Errorf("%w: empty command", domain.ErrStepStart)
	}
	for _, name := range c.SecretEnv {
		if os.Getenv(name) == "" {
			return domain.CommandResult{}, fmt.Errorf("%w: required secret %s is not set", domain.ErrStepStart, name)
		}
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	res := domain.CommandResult{Output: out.String()}

	if err == nil {
		return res, nil
	}

	// The deadline belongs to this step; parent cancellation is the
	// pipeline's and must surface as such.
	if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return res, fmt.Errorf("%w after %s: %s", domain.ErrStepTimeout, c.Timeout, c.Argv[0])
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exit *exec.ExitError
	if errors.As(err, &exit) {
		res.ExitCode = exit.ExitCode()
		return res, nil
	}

	return res, fmt.Errorf("%w: %v", domain.ErrStepStart, err)
}
