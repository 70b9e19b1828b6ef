// Package alert defines how failures are escalated to a monitoring system.
package alert

import (
	"context"

	"github.com/rise-and-shine/rxcommand/logger"
)

// Provider defines the interface for sending error alerts.
type Provider interface {
	// SendError sends an error alert.
	// errCode identifies the error, msg is a human-readable message,
	// operation describes what was being done and details carry extra context.
	SendError(ctx context.Context, errCode, msg, operation string, details map[string]string) error
}

// LogProvider is a Provider that writes alerts to a logger at error level.
// It is the default for local development and tests.
type LogProvider struct {
	logger logger.Logger
}

// NewLogProvider creates a LogProvider writing to l.
func NewLogProvider(l logger.Logger) *LogProvider {
	return &LogProvider{logger: l.Named("alert")}
}

func (p *LogProvider) SendError(ctx context.Context, errCode, msg, operation string, details map[string]string) error {
	p.logger.
		WithContext(ctx).
		With("error_code", errCode).
		With("operation", operation).
		With("details", details).
		Error(msg)
	return nil
}
