package unpack

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/editor"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/paths"
	"github.com/arthur-debert/devup/pkg/pkgmgr"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/run"
	"github.com/arthur-debert/devup/pkg/unpack"
)

// NewCommand creates the unpack command
func NewCommand() *cobra.Command {
	var (
		archivePath string
		runtimePath string
	)

	cmd := &cobra.Command{
		Use:     "unpack",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.unpack")

			facts := platform.Detect()
			p, err := paths.New()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(p.CatalogPath())
			if err != nil {
				return err
			}

			runner := run.NewExecRunner()
			apt := pkgmgr.NewApt(runner)

			// Index refresh and package installs are fail-soft here:
			// partial tool availability is acceptable on a target host
			if err := apt.Bootstrap(cmd.Context(), facts); err != nil {
				logger.Warn().Err(err).Msg("Package index update failed, continuing")
			}
			if failed := unpack.InstallBasePackages(cmd.Context(), apt, cat.RemotePackages); failed > 0 {
				logger.Warn().Int("failed", failed).Msg("Some base packages could not be installed")
			}

			if archivePath != "" {
				manifest, err := unpack.Extract(archivePath, p.PluginDir())
				if err != nil {
					return err
				}
				unpack.PrintManifest(cmd.OutOrStdout(), manifest)
			}

			// The configuration document is always (re)written
			err = editor.Write(p.InitFilePath(), facts, editor.Options{
				PluginDir: p.PluginDir(),
				Plugins:   cat.Plugins,
			})
			if err != nil {
				return err
			}

			if runtimePath != "" {
				profile := p.ProfilePath(facts.Family)
				if _, err := editor.AppendPathLine(profile, runtimePath, "nvim", facts); err != nil {
					return err
				}
			}

			logger.Info().Msg("Unpack finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&archivePath, "archive", "", "Path to a plugin archive produced by devup bundle")
	cmd.Flags().StringVar(&runtimePath, "runtime-bin", "", "Directory holding the editor runtime binary")

	return cmd
}
