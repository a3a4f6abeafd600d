package unpack

const (
	MsgShort = "Provision a target host from a plugin archive"

	MsgLong = `Install the base package catalog via apt (tolerating individual
failures), extract a plugin archive produced by devup bundle into the editor's
plugin directory, validate its contents against the embedded manifest, and
write the editor configuration document.

Intended for network-isolated hosts that cannot clone the plugin
repositories themselves.`

	MsgExample = `  devup unpack --archive /srv/devup/nvim-plugins.tar.gz
  devup unpack --archive plugins.tar.gz --runtime-bin /opt/nvim/bin`
)
