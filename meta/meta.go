// Package meta carries command metadata through context.
package meta

import "context"

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID correlates the log entries and spans of one invocation.
	TraceID ContextKey = "trace_id"

	// CommandName identifies the command an invocation belongs to.
	CommandName ContextKey = "command_name"

	// ServiceName identifies the name of the running service.
	ServiceName ContextKey = "service_name"

	// ServiceVersion indicates the version of the running service.
	ServiceVersion ContextKey = "service_version"
)

//nolint:gochecknoglobals // fixed extraction order
var allKeys = []ContextKey{TraceID, CommandName, ServiceName, ServiceVersion}

// InjectMetaToContext adds metadata from the provided map to the context.
// Empty values are skipped.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext returns every non-empty metadata value found in ctx.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range allKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// Get returns a single metadata value, or "" if it is absent.
func Get(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
