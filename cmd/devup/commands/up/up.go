package up

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/devup/pkg/backup"
	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/paths"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/provision"
	"github.com/arthur-debert/devup/pkg/run"
)

// NewCommand creates the up command
func NewCommand() *cobra.Command {
	var (
		dryRun           bool
		runtimePath      string
		skipPlugDownload bool
	)

	cmd := &cobra.Command{
		Use:     "up",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.up")

			facts := platform.Detect()
			p, err := paths.New()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(p.CatalogPath())
			if err != nil {
				return err
			}

			var runner run.Runner = run.NewExecRunner()
			if dryRun {
				runner = run.NewDryRunner()
			}

			logger.Info().
				Bool("dryRun", dryRun).
				Str("family", facts.Family).
				Msg("Starting provisioning")

			pipeline := provision.New(facts, p, cat, runner)
			err = pipeline.Run(cmd.Context(), provision.Options{
				DryRun:           dryRun,
				RuntimePath:      runtimePath,
				Scheduler:        backup.NewAtScheduler(runner, facts),
				SkipPlugDownload: skipPlugDownload,
			})
			if err != nil {
				return err
			}

			logger.Info().Msg("Provisioning finished")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log external commands without executing them")
	cmd.Flags().StringVar(&runtimePath, "runtime-bin", "", "Directory holding the editor runtime binary")
	cmd.Flags().BoolVar(&skipPlugDownload, "skip-plug-download", false, "Do not download the plugin-manager bootstrap file")

	return cmd
}
