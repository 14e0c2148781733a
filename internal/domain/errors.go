package domain

import "errors"

// ErrInvalidConfiguration is returned by configuration resolution; the
// pipeline aborts before any job runs.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrStepStart means the subprocess could not be started at all (tool
// missing, permission denied, required secret absent).
var ErrStepStart = errors.New("step could not start")

// ErrStepTimeout means the subprocess exceeded its execution deadline and
// was terminated.
var ErrStepTimeout = errors.New("step timed out")
