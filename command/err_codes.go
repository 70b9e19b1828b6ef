package command

// Error codes for command operations.
const (
	// CodeNoResult is returned by ExecuteAsync when the action completed without producing a value.
	CodeNoResult = "NO_RESULT"

	// CodeActionPanicked is raised when the action function or its source panics.
	CodeActionPanicked = "ACTION_PANICKED"

	// CodeNilSource is raised when the action function returns a nil source.
	CodeNilSource = "NIL_SOURCE"

	// CodeUnknownState is returned when decoding an unknown execution state.
	CodeUnknownState = "UNKNOWN_EXECUTION_STATE"
)
