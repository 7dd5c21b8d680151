package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-kb/internal/logging"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a finished execution. Fields holds the entries
// already attached to Logger.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once after every execution that passed validation.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs outcomes to logger, attaching info.Fields to each entry.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		logOutcome(logging.WithFields(logger, info.Fields), info)
	}
}

func logOutcome(logger interfaces.Logger, info TelemetryInfo) {
	if logger == nil {
		return
	}
	elapsed := info.Duration.Milliseconds()
	if info.Status == TelemetryStatusSuccess {
		logger.Info("command.execute.success", "duration_ms", elapsed)
		return
	}
	logger.Error("command.execute."+string(info.Status), "duration_ms", elapsed, "error", info.Error)
}
