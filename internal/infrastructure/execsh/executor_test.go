package execsh

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tfgate/tfgate/internal/domain"
)

func TestRun_CapturesOutputAndExitZero(t *testing.T) {
	e := New()
	res, err := e.Run(context.Background(), domain.Command{
		Argv:    []string{"/bin/sh", "-c", "echo hello"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit: got %d", res.ExitCode)
	}
	if !strings.Contains(res.Output, "hello") {
		t.Errorf("output: got %q", res.Output)
	}
}

func TestRun_NonzeroExitIsNotAnError(t *testing.T) {
	e := New()
	res, err := e.Run(context.Background(), domain.Command{
		Argv:    []string{"/bin/sh", "-c", "exit 3"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("tool failure must not be a runner error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit: got %d, want 3", res.ExitCode)
	}
}

func TestRun_Timeout(t *testing.T) {
	e := New()
	_, err := e.Run(context.Background(), domain.Command{
		Argv:    []string{"/bin/sh", "-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})
	if !errors.Is(err, domain.ErrStepTimeout) {
		t.Fatalf("got %v, want ErrStepTimeout", err)
	}
}

func TestRun_MissingToolIsStartError(t *testing.T) {
	e := New()
	_, err := e.Run(context.Background(), domain.Command{
		Argv:    []string{"definitely-not-installed-tool"},
		Timeout: time.Second,
	})
	if !errors.Is(err, domain.ErrStepStart) {
		t.Fatalf("got %v, want ErrStepStart", err)
	}
}

func TestRun_MissingSecretIsStartError(t *testing.T) {
	e := New()
	_, err := e.Run(context.Background(), domain.Command{
		Argv:      []string{"/bin/sh", "-c", "true"},
		SecretEnv: []string{"TFGATE_TEST_ABSENT_SECRET"},
		Timeout:   time.Second,
	})
	if !errors.Is(err, domain.ErrStepStart) {
		t.Fatalf("got %v, want ErrStepStart", err)
	}
}

func TestRun_ExtraEnvReachesSubprocess(t *testing.T) {
	e := New()
	res, err := e.Run(context.Background(), domain.Command{
		Argv:    []string{"/bin/sh", "-c", "echo $TFGATE_TEST_VAR"},
		Env:     []string{"TFGATE_TEST_VAR=from-step"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Output, "from-step") {
		t.Errorf("output: got %q", res.Output)
	}
}

func TestRun_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	e := New()
	_, err := e.Run(ctx, domain.Command{
		Argv:    []string{"/bin/sh", "-c", "sleep 5"},
		Timeout: time.Minute,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
