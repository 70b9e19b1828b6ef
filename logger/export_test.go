package logger

import "go.uber.org/zap/zapcore"

// SetOutput redirects pretty loggers created afterwards to w.
func SetOutput(w zapcore.WriteSyncer) func() {
	prev := stdout
	stdout = w
	return func() { stdout = prev }
}
