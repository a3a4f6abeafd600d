package bundle

const (
	MsgShort = "Bundle editor plugins into a portable archive"

	MsgLong = `Clone or fast-forward every plugin repository in the catalog, copy the
clones into a clean staging area stripped of version-control metadata, and
compress the result into a single archive with an embedded manifest.

The archive is then copied to a remote host over SSH unless --skip-transfer
is set. Any clone, staging, archive or transfer failure aborts the run.`

	MsgExample = `  devup bundle --user deploy --host build-box --path /srv/devup
  devup bundle --skip-transfer --archive plugins.tar.gz`
)
