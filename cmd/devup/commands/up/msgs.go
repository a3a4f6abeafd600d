package up

const (
	MsgShort = "Provision this machine"

	MsgLong = `Run the full provisioning pipeline: sweep expired backups, back up
pre-existing editor configuration, bootstrap the OS package manager, install
the tool catalog, set up the language runtime and generate the editor
configuration.

Every stage checks before it acts, so re-running is a no-op for anything
already in place. Stages fail fast; only the final plugin-install trigger is
allowed to fail without aborting.`

	MsgExample = `  devup up
  devup up --dry-run -vv
  devup up --runtime-bin ~/tools/nvim/bin`
)
