package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tfgate/tfgate/internal/domain"
)

// WriteTable renders the per-job/per-step status table, followed by the
// captured output of every failed step.
func WriteTable(w io.Writer, res domain.PipelineResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "JOB\tSTEP\tSTATUS\tEXIT\tTOOK")
	for _, j := range res.Jobs {
		if len(j.Steps) == 0 {
			_, _ = fmt.Fprintf(tw, "%s\t-\t%s\t-\t-\n", j.Name, annotate(string(j.Status), j.Reason))
			continue
		}
		for _, s := range j.Steps {
			exit := "-"
			if s.Status == domain.StatusSucceeded || s.Status == domain.StatusFailed {
				exit = fmt.Sprintf("%d", s.ExitCode)
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.Name, s.Name, string(s.Status), exit, s.Duration.Round(time.Millisecond))
		}
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintf(w, "\npipeline: %s\n", res.Status)

	for _, j := range res.Jobs {
		for _, s := range j.Steps {
			if s.Status != domain.StatusFailed {
				continue
			}
			_, _ = fmt.Fprintf(w, "\n--- %s/%s", j.Name, s.Name)
			if s.Message != "" {
				_, _ = fmt.Fprintf(w, " (%s)", s.Message)
			}
			_, _ = fmt.Fprintln(w)
			if out := strings.TrimSpace(s.Output); out != "" {
				_, _ = fmt.Fprintln(w, out)
			}
		}
	}
}

func annotate(status, reason string) string {
	if reason == "" {
		return status
	}
	return status + " (" + reason + ")"
}

// WriteJSON emits the full result for machine consumers.
func WriteJSON(w io.Writer, res domain.PipelineResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot(res))
}

// Save writes the result snapshot to a file, creating parent directories.
func Save(path string, res domain.PipelineResult) error {
	if path == "" {
		return fmt.Errorf("result path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return WriteJSON(f, res)
}

type stepOut struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	ExitCode int    `json:"exit_code"`
	Message  string `json:"message,omitempty"`
}

type jobOut struct {
	Name   string    `json:"name"`
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
	Steps  []stepOut `json:"steps,omitempty"`
}

type pipelineOut struct {
	Status   string   `json:"status"`
	Jobs     []jobOut `json:"jobs"`
	Finished int64    `json:"finished"`
}

func snapshot(res domain.PipelineResult) pipelineOut {
	out := pipelineOut{Status: string(res.Status), Finished: res.Finished}
	for _, j := range res.Jobs {
		jo := jobOut{Name: j.Name, Status: string(j.Status), Reason: j.Reason}
		for _, s := range j.Steps {
			jo.Steps = append(jo.Steps, stepOut{
				Name:     s.Name,
				Status:   string(s.Status),
				ExitCode: s.ExitCode,
				Message:  s.Message,
			})
		}
		out.Jobs = append(out.Jobs, jo)
	}
	return out
}
