package catalog

const (
	MsgShort = "Show the active tool catalog"

	MsgLong = `Print the catalog devup would act on: tools, casks, the language
runtime, the plugin set and the backup candidate list. The embedded default
catalog is used unless an override file exists in the config directory.`

	MsgExample = `  devup catalog`
)
