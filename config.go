package kb

import "github.com/goliatone/go-kb/internal/runtimeconfig"

var (
	ErrSourceDirRequired       = runtimeconfig.ErrSourceDirRequired
	ErrOutputDirRequired       = runtimeconfig.ErrOutputDirRequired
	ErrRootsRequired           = runtimeconfig.ErrRootsRequired
	ErrFilenameStyleUnknown    = runtimeconfig.ErrFilenameStyleUnknown
	ErrExtensionInvalid        = runtimeconfig.ErrExtensionInvalid
	ErrConcurrencyInvalid      = runtimeconfig.ErrConcurrencyInvalid
	ErrRenderTimeoutInvalid    = runtimeconfig.ErrRenderTimeoutInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigRead              = runtimeconfig.ErrConfigRead
	ErrConfigDecode            = runtimeconfig.ErrConfigDecode
)

type (
	Config        = runtimeconfig.Config
	HTMLConfig    = runtimeconfig.HTMLConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	EmbedSetting  = runtimeconfig.EmbedSetting
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads and validates a YAML project file.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}

// ParseConfig decodes and validates YAML project settings.
func ParseConfig(data []byte) (Config, error) {
	return runtimeconfig.Parse(data)
}
