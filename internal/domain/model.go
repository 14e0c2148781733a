package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"

	// StatusNoOp is pipeline-level only: every job was skipped by its gate,
	// nothing executed.
	StatusNoOp Status = "noop"
)

type ToolKind string

const (
	ToolTerraform ToolKind = "terraform"
	ToolTofu      ToolKind = "tofu"
)

type TriggerKind string

const (
	TriggerPush        TriggerKind = "push"
	TriggerPullRequest TriggerKind = "pull_request"
	TriggerManual      TriggerKind = "manual"
	TriggerSchedule    TriggerKind = "schedule"
)

// RunConfiguration is the fully resolved configuration for one pipeline
// invocation. Immutable after resolution; all paths are relative to the
// repository root.
type RunConfiguration struct {
	Runner             string
	WorkingDir         string
	ValidateDir        string
	Tool               ToolKind
	ToolVersion        string // empty means latest
	EnableSecurityScan bool
	EnableDocs         bool
	DocsOutputFile     string
	AllowedPRAuthor    string // empty means no restriction
	StepTimeout        time.Duration
	RenovateConfig     string
	RenovateDebug      bool
}

// TriggerContext describes why the pipeline runs. Supplied once at start,
// read-only afterwards.
type TriggerContext struct {
	Kind   TriggerKind
	Branch string
	Actor  string
}

// GateDecision is the typed outcome of a job gate: run or not, plus a
// reason a human can read in the report and a test can assert on.
type GateDecision struct {
	Run    bool
	Reason string
}

// StepSpec describes one external tool invocation. Argv, Dir and Env may
// contain ${placeholder} fields substituted from RunConfiguration before
// execution.
type StepSpec struct {
	Name              string
	Argv              []string
	Dir               string
	Env               []string // extra KEY=VALUE pairs
	SecretEnv         []string // env var names the subprocess requires from the parent environment
	ContinueOnFailure bool
	SuccessExitCodes  []int // empty means {0}

	// Condition, when set, is evaluated against the results of earlier
	// steps in the same job; false skips the step without failing it.
	Condition func(prior []StepResult) bool
}

type JobSpec struct {
	Name  string
	Steps []StepSpec
	Gate  func(cfg RunConfiguration, trig TriggerContext) GateDecision
}

type StepResult struct {
	Name     string
	Status   Status
	ExitCode int
	Output   string
	Message  string // classification detail when no exit code was produced
	Duration time.Duration
}

type JobResult struct {
	Name     string
	Status   Status
	Reason   string // gate reason when skipped
	Steps    []StepResult
	Duration time.Duration
}

type PipelineResult struct {
	Status   Status
	Jobs     []JobResult
	Finished int64 // unix seconds
}
