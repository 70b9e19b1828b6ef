package command

import "github.com/code19m/errx"

// ExecutionState is one moment in the lifetime of a single invocation.
type ExecutionState uint8

const (
	// Began marks the activation of an invocation.
	Began ExecutionState = iota + 1
	// Produced marks a value emitted by the action.
	Produced
	// Finished marks the end of an invocation, whatever the reason.
	Finished
)

func (s ExecutionState) String() string {
	switch s {
	case Began:
		return "began"
	case Produced:
		return "produced"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

func (s ExecutionState) MarshalText() ([]byte, error) {
	if s < Began || s > Finished {
		return nil, errx.New("unknown execution state", errx.WithCode(CodeUnknownState),
			errx.WithDetails(errx.D{"state": int(s)}))
	}
	return []byte(s.String()), nil
}

func (s *ExecutionState) UnmarshalText(text []byte) error {
	for _, candidate := range []ExecutionState{Began, Produced, Finished} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return errx.New("unknown execution state", errx.WithCode(CodeUnknownState),
		errx.WithDetails(errx.D{"state": string(text)}))
}

// ExecutionEvent is one lifecycle notification of one invocation. Value is
// only meaningful when State is Produced.
type ExecutionEvent[R any] struct {
	State ExecutionState
	Value R
	// Invocation identifies the invocation within its command. Began and
	// Finished of the same invocation carry the same id.
	Invocation uint64
}

// HasValue reports whether the event carries a produced value.
func (e ExecutionEvent[R]) HasValue() bool {
	return e.State == Produced
}

func newBegan[R any](invocation uint64) ExecutionEvent[R] {
	return ExecutionEvent[R]{State: Began, Invocation: invocation}
}

func newProduced[R any](invocation uint64, value R) ExecutionEvent[R] {
	return ExecutionEvent[R]{State: Produced, Value: value, Invocation: invocation}
}

func newFinished[R any](invocation uint64) ExecutionEvent[R] {
	return ExecutionEvent[R]{State: Finished, Invocation: invocation}
}
