package commands

import (
	"strings"

	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// CommandLogger returns a logger scoped below the command namespace for
// module, enriching it with the fields every command entry carries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.CommandLogger(provider, name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
