package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tfgate/tfgate/internal/domain"
)

func sample() domain.PipelineResult {
	return domain.PipelineResult{
		Status: domain.StatusFailed,
		Jobs: []domain.JobResult{
			{
				Name:   "lint",
				Status: domain.StatusFailed,
				Steps: []domain.StepResult{
					{Name: "fmt-check", Status: domain.StatusSucceeded},
					{Name: "validate", Status: domain.StatusFailed, ExitCode: 1, Output: "Error: invalid block"},
				},
			},
			{Name: "docs", Status: domain.StatusSkipped, Reason: "lint job did not succeed (failed)"},
		},
		Finished: 123,
	}
}

func TestWriteTable_ShowsFailedStepOutput(t *testing.T) {
	var sb strings.Builder
	WriteTable(&sb, sample())

	out := sb.String()
	for _, want := range []string{"lint", "validate", "failed", "invalid block", "lint job did not succeed"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSave_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	if err := Save(path, sample()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if !strings.Contains(string(b), `"status": "failed"`) {
		t.Errorf("json content: %s", b)
	}
}
