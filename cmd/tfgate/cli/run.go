package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tfgate/tfgate/internal/application"
	"github.com/tfgate/tfgate/internal/domain"
	"github.com/tfgate/tfgate/internal/infrastructure/config"
	"github.com/tfgate/tfgate/internal/infrastructure/execsh"
	"github.com/tfgate/tfgate/internal/infrastructure/logging"
	"github.com/tfgate/tfgate/internal/infrastructure/releases_http"
	"github.com/tfgate/tfgate/internal/infrastructure/report"
	"go.uber.org/zap"
)

var (
	flagWorkingDir  string
	flagValidateDir string
	flagTool        string
	flagToolVersion string
	flagSecurity    bool
	flagDocs        bool
	flagDocsOutput  string
	flagPRAuthor    string
	flagTimeout     time.Duration
	flagEvent       string
	flagBranch      string
	flagActor       string
	flagJSON        bool
	flagResultFile  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate gates and run the enabled jobs once",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New(verbose)
		defer func() { _ = log.Sync() }()

		cfg, trig, fileCfg, err := resolved(cmd)
		if err != nil {
			log.Error("configuration", zap.Error(err))
			_ = log.Sync()
			os.Exit(application.ExitInvalidConfig)
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log.Info("start",
			zap.String("version", version),
			zap.String("event", string(trig.Kind)),
			zap.String("branch", trig.Branch),
			zap.String("working_dir", cfg.WorkingDir),
			zap.String("tool", string(cfg.Tool)),
		)

		rel := releases_http.New(fileCfg.ReleaseAPI.BaseURL, fileCfg.ReleaseAPI.Timeout)
		pr := application.NewPipelineRunner(log, execsh.New(), rel)
		res := pr.Run(ctx, cfg, trig)

		if flagResultFile != "" {
			if err := report.Save(flagResultFile, res); err != nil {
				log.Warn("result file", zap.Error(err))
			}
		}
		if flagJSON {
			_ = report.WriteJSON(os.Stdout, res)
		} else {
			report.WriteTable(os.Stdout, res)
		}

		_ = log.Sync()
		os.Exit(application.ExitCode(res))
	},
}

func init() {
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "print result as JSON")
	runCmd.Flags().StringVar(&flagResultFile, "result-file", "", "also write the JSON result to this file")

	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagWorkingDir, "working-dir", "", "directory holding the Terraform sources")
	cmd.Flags().StringVar(&flagValidateDir, "validate-dir", "", "directory to validate (defaults to working dir)")
	cmd.Flags().StringVar(&flagTool, "tool", "", "terraform or tofu")
	cmd.Flags().StringVar(&flagToolVersion, "tool-version", "", "tool version (empty resolves latest)")
	cmd.Flags().BoolVar(&flagSecurity, "security-scan", false, "enable checkov and tfsec")
	cmd.Flags().BoolVar(&flagDocs, "docs", false, "enable documentation generation")
	cmd.Flags().StringVar(&flagDocsOutput, "docs-output", "", "documentation output file")
	cmd.Flags().StringVar(&flagPRAuthor, "allowed-pr-author", "", "only run pull requests from this author")
	cmd.Flags().DurationVar(&flagTimeout, "step-timeout", 0, "per-step execution timeout")
	cmd.Flags().StringVar(&flagEvent, "event", "", "trigger event (push, pull_request, manual, schedule)")
	cmd.Flags().StringVar(&flagBranch, "branch", "", "trigger branch")
	cmd.Flags().StringVar(&flagActor, "actor", "", "trigger actor login")
}

// resolved merges file, environment and flag configuration (flags win) and
// resolves it into the immutable run configuration plus trigger context.
func resolved(cmd *cobra.Command) (domain.RunConfiguration, domain.TriggerContext, config.Config, error) {
	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return domain.RunConfiguration{}, domain.TriggerContext{}, fileCfg, err
	}

	p := fileCfg.Partial()
	fl := cmd.Flags()
	if fl.Changed("working-dir") {
		p.WorkingDir = flagWorkingDir
	}
	if fl.Changed("validate-dir") {
		p.ValidateDir = flagValidateDir
	}
	if fl.Changed("tool") {
		p.Tool = domain.ToolKind(flagTool)
	}
	if fl.Changed("tool-version") {
		p.ToolVersion = flagToolVersion
	}
	if fl.Changed("security-scan") {
		p.EnableSecurityScan = flagSecurity
	}
	if fl.Changed("docs") {
		p.EnableDocs = flagDocs
	}
	if fl.Changed("docs-output") {
		p.DocsOutputFile = flagDocsOutput
	}
	if fl.Changed("allowed-pr-author") {
		p.AllowedPRAuthor = flagPRAuthor
	}
	if fl.Changed("step-timeout") {
		p.StepTimeout = flagTimeout
	}

	cfg, err := application.ResolveConfiguration(p)
	if err != nil {
		return cfg, domain.TriggerContext{}, fileCfg, err
	}

	trig := config.Trigger()
	if fl.Changed("event") {
		trig.Kind = domain.TriggerKind(flagEvent)
	}
	if fl.Changed("branch") {
		trig.Branch = flagBranch
	}
	if fl.Changed("actor") {
		trig.Actor = flagActor
	}
	if trig.Kind == "" {
		trig.Kind = domain.TriggerManual
	}

	return cfg, trig, fileCfg, nil
}
