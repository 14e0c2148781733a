package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tfgate/tfgate/internal/application"
	"github.com/tfgate/tfgate/internal/domain"
)

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which jobs would run for the given trigger, without executing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, trig, _, err := resolved(cmd)
		if err != nil {
			return err
		}

		type row struct {
			Job    string `json:"job"`
			Run    bool   `json:"run"`
			Reason string `json:"reason"`
		}

		rows := []row{}
		for _, g := range []struct {
			name string
			gate func(domain.RunConfiguration, domain.TriggerContext) domain.GateDecision
		}{
			{application.JobLint, application.LintGate},
			{application.JobSecurity, application.SecurityGate},
			{application.JobDocs, application.DocsGate},
			{application.JobDeps, application.DepsGate},
		} {
			d := g.gate(cfg, trig)
			rows = append(rows, row{Job: g.name, Run: d.Run, Reason: d.Reason})
		}

		if planJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "JOB\tRUN\tREASON")
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%s\t%t\t%s\n", r.Job, r.Run, r.Reason)
		}
		return w.Flush()
	},
}

func init() {
	addRunFlags(planCmd)
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print JSON")

	rootCmd.AddCommand(planCmd)
}
