package bundle

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/devup/pkg/bundle"
	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/internal/hashutil"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/paths"
	"github.com/arthur-debert/devup/pkg/transfer"
)

// NewCommand creates the bundle command
func NewCommand() *cobra.Command {
	var (
		remoteUser   string
		remoteHost   string
		remotePath   string
		archiveName  string
		skipTransfer bool
	)

	cmd := &cobra.Command{
		Use:     "bundle",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.bundle")

			if !skipTransfer && (remoteUser == "" || remoteHost == "" || remotePath == "") {
				return errors.New(errors.ErrInvalidInput,
					"--user, --host and --path are required unless --skip-transfer is set")
			}

			p, err := paths.New()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(p.CatalogPath())
			if err != nil {
				return err
			}

			bundler := bundle.New(p.ClonesDir(), p.StagingDir(), cat)

			if err := bundler.Sync(cmd.Context()); err != nil {
				return err
			}
			if err := bundler.Stage(); err != nil {
				return err
			}

			archivePath := p.ArchivePath(archiveName)
			if err := bundler.Archive(archivePath); err != nil {
				return err
			}
			checksum, err := hashutil.FileChecksum(archivePath)
			if err != nil {
				return errors.Wrap(err, errors.ErrBundleArchive, "failed to checksum archive")
			}
			logger.Info().
				Str("archive", archivePath).
				Str("checksum", checksum).
				Msg("Bundle ready")
			cmd.Printf("Archive: %s\nChecksum: %s\n", archivePath, checksum)

			if skipTransfer {
				logger.Info().Msg("Transfer skipped by request")
				return nil
			}

			copier := transfer.NewSSHCopier(remoteUser, remoteHost, p.Home())
			dest := path.Join(remotePath, archiveName)
			return copier.Copy(cmd.Context(), archivePath, dest)
		},
	}

	cmd.Flags().StringVar(&remoteUser, "user", "", "Remote user name")
	cmd.Flags().StringVar(&remoteHost, "host", "", "Remote host")
	cmd.Flags().StringVar(&remotePath, "path", "", "Remote directory to copy the archive into")
	cmd.Flags().StringVar(&archiveName, "archive", paths.DefaultArchiveName, "Archive file name")
	cmd.Flags().BoolVar(&skipTransfer, "skip-transfer", false, "Build the archive but do not copy it anywhere")

	return cmd
}
