package domain

import (
	"context"
	"time"
)

// Command is one rendered external tool invocation, ready to execute.
type Command struct {
	Argv      []string
	Dir       string
	Env       []string
	SecretEnv []string
	Timeout   time.Duration
}

type CommandResult struct {
	ExitCode int
	Output   string
}

type CommandRunner interface {
	Run(ctx context.Context, c Command) (CommandResult, error)
}

type VersionResolver interface {
	Latest(ctx context.Context, tool ToolKind) (string, error)
}
