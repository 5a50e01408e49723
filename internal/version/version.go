package version

// Version is the current version of the sinly-quant library.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/sinly-lab/sinly-quant/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// StrategyApiVersion is the version of the strategy API the engine exposes.
// Strategies report the version they were built against and are rejected at
// load time when major or minor versions differ.
const StrategyApiVersion = "1.0.0"

// GetVersion returns the current version of the library.
func GetVersion() string {
	return Version
}
