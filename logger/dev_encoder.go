package logger

import (
	"encoding/json"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // shared by every dev encoder instance
var bufferPool = buffer.NewPool()

// devEncoder renders entries as a colored one-line header followed by the
// entry's fields as indented JSON. Fields are accumulated by an embedded JSON
// encoder so loggers derived with With keep their context.
type devEncoder struct {
	zapcore.Encoder
	cfg zapcore.EncoderConfig
}

func newDevEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &devEncoder{Encoder: zapcore.NewJSONEncoder(cfg), cfg: cfg}
}

// Clone keeps derived loggers on the dev encoder.
func (e *devEncoder) Clone() zapcore.Encoder {
	return &devEncoder{Encoder: e.Encoder.Clone(), cfg: e.cfg}
}

func (e *devEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	jsonBuf, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}
	defer jsonBuf.Free()

	var payload map[string]any
	if err = json.Unmarshal(jsonBuf.Bytes(), &payload); err != nil {
		payload = nil
	}
	for _, key := range []string{e.cfg.MessageKey, e.cfg.LevelKey, e.cfg.TimeKey, e.cfg.NameKey} {
		delete(payload, key)
	}

	out := bufferPool.Get()
	out.AppendString(e.header(entry))

	if len(payload) > 0 {
		pretty, marshalErr := json.MarshalIndent(payload, "", "  ")
		if marshalErr == nil {
			out.AppendString("\n")
			out.AppendString(string(pretty))
		}
	}
	out.AppendString("\n")

	return out, nil
}

func (e *devEncoder) header(entry zapcore.Entry) string {
	var sb strings.Builder
	sb.WriteString(entry.Time.Format("15:04:05.000"))
	sb.WriteString(" ")
	sb.WriteString(levelColor(entry.Level).Sprint(entry.Level.CapitalString()))
	if entry.LoggerName != "" {
		sb.WriteString(" ")
		sb.WriteString(color.New(color.Faint).Sprint(entry.LoggerName))
	}
	if entry.Message != "" {
		sb.WriteString(" ")
		sb.WriteString(entry.Message)
	}
	return sb.String()
}

func levelColor(level zapcore.Level) *color.Color {
	switch level {
	case zapcore.DebugLevel:
		return color.New(color.FgCyan)
	case zapcore.InfoLevel:
		return color.New(color.FgGreen)
	case zapcore.WarnLevel:
		return color.New(color.FgYellow)
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return color.New(color.FgRed, color.Bold)
	case zapcore.InvalidLevel:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.Reset)
	}
}
