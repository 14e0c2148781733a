package domain

import (
	"context"
	"sync"
)

// MockRunner scripts command outcomes by token: if any argv element matches
// a key in ExitCodes or Errs, that outcome is returned. Unmatched commands
// succeed with exit 0. Calls records every argv in execution order.
type MockRunner struct {
	ExitCodes map[string]int
	Errs      map[string]error

	mu    sync.Mutex
	Calls [][]string
}

func (m *MockRunner) Run(ctx context.Context, c Command) (CommandResult, error) {
	m.mu.Lock()
	argv := make([]string, len(c.Argv))
	copy(argv, c.Argv)
	m.Calls = append(m.Calls, argv)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return CommandResult{}, err
	}

	for _, tok := range c.Argv {
		if err, ok := m.Errs[tok]; ok {
			return CommandResult{}, err
		}
		if code, ok := m.ExitCodes[tok]; ok {
			return CommandResult{ExitCode: code, Output: "mock: " + tok}, nil
		}
	}
	return CommandResult{ExitCode: 0}, nil
}

// FirstCall returns the index of the first recorded call containing the
// given token, or -1.
func (m *MockRunner) FirstCall(token string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, argv := range m.Calls {
		for _, tok := range argv {
			if tok == token {
				return i
			}
		}
	}
	return -1
}

func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

type MockResolver struct {
	Version string
	Err     error
	Called  int
}

func (m *MockResolver) Latest(ctx context.Context, tool ToolKind) (string, error) {
	m.Called++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Version, nil
}
