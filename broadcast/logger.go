package broadcast

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/rise-and-shine/rxcommand/logger"
)

var _ watermill.LoggerAdapter = (*loggerAdapter)(nil)

// loggerAdapter routes watermill logs into logger.Logger.
type loggerAdapter struct {
	base logger.Logger
}

// NewLoggerAdapter returns a watermill.LoggerAdapter writing to l. Watermill
// trace logs are written at debug level.
func NewLoggerAdapter(l logger.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{base: l}
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l := a.with(fields)
	if err != nil {
		l = l.With("error", err.Error())
	}
	l.Error(msg)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.with(fields).Info(msg)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.with(fields).Debug(msg)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.with(fields).Debug(msg)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{base: a.with(fields)}
}

func (a *loggerAdapter) with(fields watermill.LogFields) logger.Logger {
	if len(fields) == 0 {
		return a.base
	}
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return a.base.With(kv...)
}
