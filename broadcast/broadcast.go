// Package broadcast forwards the lifecycle of a command to a watermill
// publisher. Each execution event and each reported error becomes one JSON
// message on the configured topic.
//
// Publishing happens on a background goroutine fed by a bounded buffer, so a
// slow broker never stalls the command. Events are dropped with a warning
// when the buffer is full.
package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/rise-and-shine/rxcommand/command"
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/rx"
)

const (
	CodeMarshalFailed    = "BROADCAST_MARSHAL_FAILED"
	CodeMalformedMessage = "BROADCAST_MALFORMED_MESSAGE"
)

// Metadata keys set on every message.
const (
	MetadataCommand    = "command"
	MetadataKind       = "kind"
	MetadataInvocation = "invocation"
)

// Kind tells what an Envelope describes.
type Kind string

const (
	KindExecution Kind = "execution"
	KindError     Kind = "error"
)

// Config configures a Forwarder.
type Config struct {
	Topic  string `yaml:"topic"  default:"rxcommand.executions" validate:"required"`
	Buffer int    `yaml:"buffer" default:"256"                  validate:"gt=0"`
}

// withDefaults fills unset fields from the default tags. A non-positive
// buffer counts as unset.
func (c Config) withDefaults() Config {
	if c.Buffer < 0 {
		c.Buffer = 0
	}
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return c
}

// Envelope is the payload of a broadcast message.
type Envelope struct {
	Kind       Kind                   `json:"kind"`
	Command    string                 `json:"command"`
	Invocation uint64                 `json:"invocation,omitempty"`
	State      command.ExecutionState `json:"state,omitempty"`
	Value      json.RawMessage        `json:"value,omitempty"`
	Error      string                 `json:"error,omitempty"`
	At         time.Time              `json:"at"`
}

// Forwarder publishes the events of one command until closed.
type Forwarder struct {
	publisher message.Publisher
	topic     string
	logger    logger.Logger

	queue chan *message.Message
	done  chan struct{}
	subs  []rx.Subscription

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// Forward starts forwarding the events of cmd to publisher. The caller owns
// publisher; Close only stops forwarding. Unset fields of cfg take their
// defaults.
func Forward[R any](cfg Config, publisher message.Publisher, cmd command.Observable[R], l logger.Logger) *Forwarder {
	cfg = cfg.withDefaults()

	f := &Forwarder{
		publisher: publisher,
		topic:     cfg.Topic,
		logger:    l.Named("broadcast").With("topic", cfg.Topic, "command", cmd.Name()),
		queue:     make(chan *message.Message, cfg.Buffer),
		done:      make(chan struct{}),
	}

	go f.run()

	name := cmd.Name()
	f.subs = append(f.subs,
		cmd.Executions().Subscribe(rx.OnValue(func(event command.ExecutionEvent[R]) {
			f.enqueue(executionEnvelope(name, event))
		})),
		cmd.Errors().Subscribe(rx.OnValue(func(err error) {
			f.enqueue(Envelope{Kind: KindError, Command: name, Error: err.Error(), At: time.Now()}, nil)
		})),
	)

	return f
}

func executionEnvelope[R any](name string, event command.ExecutionEvent[R]) (Envelope, error) {
	env := Envelope{
		Kind:       KindExecution,
		Command:    name,
		Invocation: event.Invocation,
		State:      event.State,
		At:         time.Now(),
	}
	if !event.HasValue() {
		return env, nil
	}

	value, err := json.Marshal(event.Value)
	if err != nil {
		return env, errx.Wrap(err, errx.WithCode(CodeMarshalFailed), errx.WithDetails(errx.D{
			"invocation": event.Invocation,
		}))
	}
	env.Value = value
	return env, nil
}

func (f *Forwarder) enqueue(env Envelope, err error) {
	if err != nil {
		f.logger.Warnx(err)
	}

	msg, err := encode(env)
	if err != nil {
		f.logger.Warnx(err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}

	select {
	case f.queue <- msg:
	default:
		f.logger.With("kind", env.Kind, "invocation", env.Invocation).Warn("broadcast buffer full, event dropped")
	}
}

func (f *Forwarder) run() {
	defer close(f.done)
	for msg := range f.queue {
		if err := f.publisher.Publish(f.topic, msg); err != nil {
			f.logger.Errorx(errx.Wrap(err, errx.WithDetails(errx.D{"message_uuid": msg.UUID})))
		}
	}
}

// Close stops forwarding and waits until buffered events are published.
func (f *Forwarder) Close() error {
	f.once.Do(func() {
		for _, sub := range f.subs {
			sub.Unsubscribe()
		}

		f.mu.Lock()
		f.closed = true
		close(f.queue)
		f.mu.Unlock()

		<-f.done
	})
	return nil
}

func encode(env Envelope) (*message.Message, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeMarshalFailed))
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataCommand, env.Command)
	msg.Metadata.Set(MetadataKind, string(env.Kind))
	if env.Kind == KindExecution {
		msg.Metadata.Set(MetadataInvocation, cast.ToString(env.Invocation))
	}
	return msg, nil
}

// Decode reads the envelope carried by msg.
func Decode(msg *message.Message) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return env, errx.Wrap(err, errx.WithCode(CodeMalformedMessage), errx.WithDetails(errx.D{
			"message_uuid": msg.UUID,
		}))
	}
	return env, nil
}

// DecodeValue reads the produced value of an execution envelope.
func DecodeValue[R any](env Envelope) (R, error) {
	var value R
	if len(env.Value) == 0 {
		return value, errx.New("envelope carries no value",
			errx.WithCode(CodeMalformedMessage),
			errx.WithDetails(errx.D{"state": env.State.String()}),
		)
	}
	if err := json.Unmarshal(env.Value, &value); err != nil {
		return value, errx.Wrap(err, errx.WithCode(CodeMalformedMessage))
	}
	return value, nil
}
