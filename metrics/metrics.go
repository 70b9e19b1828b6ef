// Package metrics records the activity of commands in a go-metrics registry.
//
// For a command named "save" and the default prefix the recorder maintains:
//
//	rxcommand.save.in_flight   gauge
//	rxcommand.save.began       counter
//	rxcommand.save.produced    counter
//	rxcommand.save.finished    counter
//	rxcommand.save.errors      counter
//	rxcommand.save.duration    timer, Began to Finished
package metrics

import (
	"context"
	"strings"
	"sync"
	"time"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/rise-and-shine/rxcommand/command"
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/rx"
)

// Config configures a Recorder.
type Config struct {
	Prefix string `yaml:"prefix" default:"rxcommand"`
	// ReportInterval is how often Report logs a snapshot.
	ReportInterval time.Duration `yaml:"report_interval" default:"1m"`
}

// Snapshot is a point-in-time copy of the recorded values.
type Snapshot struct {
	InFlight     int64
	Began        int64
	Produced     int64
	Finished     int64
	Errors       int64
	Completed    int64
	MeanDuration time.Duration
	MaxDuration  time.Duration
}

// Recorder observes one command.
type Recorder struct {
	cfg  Config
	name string

	inFlight gometrics.Gauge
	began    gometrics.Counter
	produced gometrics.Counter
	finished gometrics.Counter
	errors   gometrics.Counter
	duration gometrics.Timer

	mu     sync.Mutex
	starts map[uint64]time.Time

	subs []rx.Subscription
	once sync.Once
}

// Observe starts recording cmd into registry. A nil registry means
// gometrics.DefaultRegistry.
func Observe[R any](cfg Config, registry gometrics.Registry, cmd command.Observable[R]) *Recorder {
	if registry == nil {
		registry = gometrics.DefaultRegistry
	}

	r := &Recorder{
		cfg:    cfg,
		name:   cmd.Name(),
		starts: make(map[uint64]time.Time),
	}

	r.inFlight = gometrics.GetOrRegisterGauge(r.metricName("in_flight"), registry)
	r.began = gometrics.GetOrRegisterCounter(r.metricName("began"), registry)
	r.produced = gometrics.GetOrRegisterCounter(r.metricName("produced"), registry)
	r.finished = gometrics.GetOrRegisterCounter(r.metricName("finished"), registry)
	r.errors = gometrics.GetOrRegisterCounter(r.metricName("errors"), registry)
	r.duration = gometrics.GetOrRegisterTimer(r.metricName("duration"), registry)

	r.subs = append(r.subs,
		cmd.Executions().Subscribe(rx.OnValue(func(event command.ExecutionEvent[R]) {
			r.record(event.State, event.Invocation)
		})),
		cmd.Errors().Subscribe(rx.OnValue(func(error) {
			r.errors.Inc(1)
		})),
	)

	return r
}

func (r *Recorder) metricName(metric string) string {
	parts := []string{r.name, metric}
	if r.cfg.Prefix != "" {
		parts = append([]string{r.cfg.Prefix}, parts...)
	}
	return strings.Join(parts, ".")
}

func (r *Recorder) record(state command.ExecutionState, invocation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch state {
	case command.Began:
		r.began.Inc(1)
		r.inFlight.Update(r.inFlight.Value() + 1)
		r.starts[invocation] = time.Now()
	case command.Produced:
		r.produced.Inc(1)
	case command.Finished:
		r.finished.Inc(1)
		r.inFlight.Update(r.inFlight.Value() - 1)
		if start, ok := r.starts[invocation]; ok {
			r.duration.UpdateSince(start)
			delete(r.starts, invocation)
		}
	}
}

// Snapshot returns the current values.
func (r *Recorder) Snapshot() Snapshot {
	timer := r.duration.Snapshot()
	return Snapshot{
		InFlight:     r.inFlight.Value(),
		Began:        r.began.Count(),
		Produced:     r.produced.Count(),
		Finished:     r.finished.Count(),
		Errors:       r.errors.Count(),
		Completed:    timer.Count(),
		MeanDuration: time.Duration(timer.Mean()),
		MaxDuration:  time.Duration(timer.Max()),
	}
}

// Report logs a snapshot every ReportInterval until ctx is done.
func (r *Recorder) Report(ctx context.Context, l logger.Logger) {
	if r.cfg.ReportInterval <= 0 {
		return
	}

	ticker := time.NewTicker(r.cfg.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.Snapshot()
			l.With(
				"command", r.name,
				"in_flight", s.InFlight,
				"began", s.Began,
				"finished", s.Finished,
				"errors", s.Errors,
				"mean_duration", s.MeanDuration.String(),
			).Info("command metrics")
		}
	}
}

// Close stops recording. Registered metrics keep their values.
func (r *Recorder) Close() {
	r.once.Do(func() {
		for _, sub := range r.subs {
			sub.Unsubscribe()
		}
	})
}
