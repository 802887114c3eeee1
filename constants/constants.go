package constants

// Overridden at build time with -ldflags "-X github.com/xeptore/innertune/constants.Version=...".
var (
	Version     = "dev"
	CompileTime = "unknown"
)
