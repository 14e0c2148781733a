package application

import (
	"fmt"

	"github.com/tfgate/tfgate/internal/domain"
)

// mainBranch is the only branch documentation may be written back to.
const mainBranch = "main"

func recognized(k domain.TriggerKind) bool {
	switch k {
	case domain.TriggerPush, domain.TriggerPullRequest, domain.TriggerManual, domain.TriggerSchedule:
		return true
	}
	return false
}

// LintGate runs everywhere except pull requests from a disallowed author.
// Unrecognized trigger kinds skip every job: fail closed, never open.
func LintGate(cfg domain.RunConfiguration, trig domain.TriggerContext) domain.GateDecision {
	if !recognized(trig.Kind) {
		return domain.GateDecision{Run: false, Reason: fmt.Sprintf("unrecognized trigger kind %q", trig.Kind)}
	}
	if cfg.AllowedPRAuthor != "" && trig.Kind == domain.TriggerPullRequest && trig.Actor != cfg.AllowedPRAuthor {
		return domain.GateDecision{Run: false, Reason: fmt.Sprintf("pull request author %q is not %q", trig.Actor, cfg.AllowedPRAuthor)}
	}
	return domain.GateDecision{Run: true, Reason: "lint always runs for allowed triggers"}
}

// SecurityGate requires the scan to be enabled and the lint gate to be open.
func SecurityGate(cfg domain.RunConfiguration, trig domain.TriggerContext) domain.GateDecision {
	if lint := LintGate(cfg, trig); !lint.Run {
		return domain.GateDecision{Run: false, Reason: "lint gate closed: " + lint.Reason}
	}
	if !cfg.EnableSecurityScan {
		return domain.GateDecision{Run: false, Reason: "security scanning disabled"}
	}
	return domain.GateDecision{Run: true, Reason: "security scanning enabled"}
}

// DocsGate opens only for pushes to the main branch with docs enabled. Docs
// write back to the repository, so they must never run on pull requests.
// The additional requirement that the lint job finished successfully is
// enforced by the pipeline runner after lint finalizes.
func DocsGate(cfg domain.RunConfiguration, trig domain.TriggerContext) domain.GateDecision {
	if !recognized(trig.Kind) {
		return domain.GateDecision{Run: false, Reason: fmt.Sprintf("unrecognized trigger kind %q", trig.Kind)}
	}
	if !cfg.EnableDocs {
		return domain.GateDecision{Run: false, Reason: "docs generation disabled"}
	}
	if trig.Kind != domain.TriggerPush {
		return domain.GateDecision{Run: false, Reason: "docs only run on push"}
	}
	if trig.Branch != mainBranch {
		return domain.GateDecision{Run: false, Reason: fmt.Sprintf("docs only run on branch %q, got %q", mainBranch, trig.Branch)}
	}
	return domain.GateDecision{Run: true, Reason: "push to " + mainBranch + " with docs enabled"}
}

// DepsGate opens only for scheduled runs.
func DepsGate(cfg domain.RunConfiguration, trig domain.TriggerContext) domain.GateDecision {
	if !recognized(trig.Kind) {
		return domain.GateDecision{Run: false, Reason: fmt.Sprintf("unrecognized trigger kind %q", trig.Kind)}
	}
	if trig.Kind != domain.TriggerSchedule {
		return domain.GateDecision{Run: false, Reason: "dependency updates only run on schedule"}
	}
	return domain.GateDecision{Run: true, Reason: "scheduled run"}
}
