package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tfgate/tfgate/internal/application"
	"github.com/tfgate/tfgate/internal/domain"
	"github.com/tfgate/tfgate/internal/infrastructure/execsh"
	"github.com/tfgate/tfgate/internal/infrastructure/logging"
	"github.com/tfgate/tfgate/internal/infrastructure/releases_http"
	"github.com/tfgate/tfgate/internal/infrastructure/report"
	"go.uber.org/zap"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the pipeline when Terraform sources change",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New(verbose)
		defer func() { _ = log.Sync() }()

		cfg, trig, fileCfg, err := resolved(cmd)
		if err != nil {
			log.Error("configuration", zap.Error(err))
			_ = log.Sync()
			os.Exit(application.ExitInvalidConfig)
		}
		// Local edit loop: trigger context is manual regardless of env.
		trig.Kind = domain.TriggerManual

		rel := releases_http.New(fileCfg.ReleaseAPI.BaseURL, fileCfg.ReleaseAPI.Timeout)
		pr := application.NewPipelineRunner(log, execsh.New(), rel)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		w := application.NewWatcher(log, cfg.WorkingDir, watchInterval, func(ctx context.Context) {
			res := pr.Run(ctx, cfg, trig)
			report.WriteTable(os.Stdout, res)
		})

		if err := w.Run(ctx); err != nil {
			log.Error("watch", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
	},
}

func init() {
	addRunFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "also re-run on this fixed interval")

	rootCmd.AddCommand(watchCmd)
}
