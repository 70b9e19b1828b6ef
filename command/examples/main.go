// Command examples runs a small document-saving workflow on top of a
// reactive command: a wrapped handler as the action, an enablement signal,
// lifecycle events broadcast over an in-memory watermill pub/sub and
// activity recorded in go-metrics.
//
// Run it from this directory:
//
//	ENVIRONMENT=local go run .
package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/code19m/errx"
	gometrics "github.com/rcrowley/go-metrics"

	"github.com/rise-and-shine/rxcommand/alert"
	"github.com/rise-and-shine/rxcommand/broadcast"
	"github.com/rise-and-shine/rxcommand/cfgloader"
	"github.com/rise-and-shine/rxcommand/command"
	"github.com/rise-and-shine/rxcommand/handler"
	"github.com/rise-and-shine/rxcommand/handler/wrapper"
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/meta"
	"github.com/rise-and-shine/rxcommand/metrics"
	"github.com/rise-and-shine/rxcommand/rx"
	"github.com/rise-and-shine/rxcommand/tracing"
)

const codeEmptyDocument = "EMPTY_DOCUMENT"

type Config struct {
	Service struct {
		Name    string `yaml:"name"    validate:"required"`
		Version string `yaml:"version" default:"dev"`
	} `yaml:"service"`

	Logger    logger.Config    `yaml:"logger"`
	Tracing   tracing.Config   `yaml:"tracing"`
	Broadcast broadcast.Config `yaml:"broadcast"`
	Metrics   metrics.Config   `yaml:"metrics"`

	// Kafka, when set, receives the broadcast events as well.
	Kafka *broadcast.KafkaConfig `yaml:"kafka"`

	Save struct {
		Name    string        `yaml:"name"    default:"save_document"`
		Timeout time.Duration `yaml:"timeout" default:"1s"`
	} `yaml:"save"`
}

type document struct {
	ID   string `json:"id"   validate:"required"`
	Body string `json:"body"`
}

type receipt struct {
	ID    string `json:"id"`
	Bytes int    `json:"bytes"`
}

func main() {
	cfg := cfgloader.MustLoad[Config]()

	logger.SetGlobal(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	meta.SetServiceInfo(cfg.Service.Name, cfg.Service.Version)

	shutdownTracer, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		logger.Fatalx(err)
	}
	defer func() { _ = shutdownTracer() }()

	log := logger.Named("demo")

	save := handler.Chain[document, receipt](
		handler.Func[document, receipt](saveDocument),
		wrapper.NewRecoveryWrapper[document, receipt](log, cfg.Save.Name),
		wrapper.NewTracingWrapper[document, receipt](cfg.Save.Name),
		wrapper.NewMetaInjectWrapper[document, receipt](cfg.Save.Name),
		wrapper.NewLoggerWrapper[document, receipt](log, cfg.Save.Name),
		wrapper.NewAlertWrapper[document, receipt](log, alert.NewLogProvider(log), cfg.Save.Name),
		wrapper.NewValidationWrapper[document, receipt](cfg.Save.Name),
		wrapper.NewTimeoutWrapper[document, receipt](cfg.Save.Timeout),
	)

	connected := rx.NewState(true)
	cmd := command.FromHandler(save,
		command.WithName(cfg.Save.Name),
		command.WithCanExecute(connected),
		command.WithLogger(log),
	)
	defer cmd.Dispose()

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, broadcast.NewLoggerAdapter(log))
	defer func() { _ = pubsub.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := pubsub.Subscribe(ctx, cfg.Broadcast.Topic)
	if err != nil {
		logger.Fatalx(err)
	}
	var consumers sync.WaitGroup
	consumers.Add(1)
	go func() {
		defer consumers.Done()
		consume(log.Named("consumer"), events)
	}()

	forwarder := broadcast.Forward[receipt](cfg.Broadcast, pubsub, cmd, log)
	if cfg.Kafka != nil {
		kafkaPublisher, kerr := broadcast.NewKafkaPublisher(*cfg.Kafka, log)
		if kerr != nil {
			logger.Fatalx(kerr)
		}
		defer func() { _ = kafkaPublisher.Close() }()

		kafkaForwarder := broadcast.Forward[receipt](cfg.Broadcast, kafkaPublisher, cmd, log)
		defer func() { _ = kafkaForwarder.Close() }()
	}
	recorder := metrics.Observe[receipt](cfg.Metrics, gometrics.NewRegistry(), cmd)
	defer recorder.Close()
	go recorder.Report(ctx, log)

	cmd.CanExecute().Subscribe(rx.OnValue(func(can bool) {
		log.With("can_execute", can).Info("save button toggled")
	}))
	cmd.Errors().Subscribe(rx.OnValue(func(err error) {
		log.With("error", err.Error()).Warn("save failed")
	}))

	run(ctx, log, cmd, connected)

	_ = forwarder.Close()
	_ = pubsub.Close()
	consumers.Wait()

	s := recorder.Snapshot()
	log.With(
		"began", s.Began,
		"finished", s.Finished,
		"errors", s.Errors,
		"mean_duration", s.MeanDuration.String(),
	).Info("demo finished")
}

func run(ctx context.Context, log logger.Logger, cmd *command.ReactiveCommand[document, receipt], connected *rx.State[bool]) {
	var wg sync.WaitGroup
	for i, body := range []string{"hello", "overlapping save", ""} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := document{ID: string(rune('a' + i)), Body: body}
			r, err := cmd.ExecuteAsync(ctx, doc)
			if err != nil {
				log.With("id", doc.ID, "error", err.Error()).Warn("save returned an error")
				return
			}
			log.With("id", r.ID, "bytes", r.Bytes).Info("saved")
		}()
	}
	wg.Wait()

	slow := cmd.Execute(document{ID: "slow", Body: strings.Repeat("x", 1<<10)})
	sub := slow.Subscribe(rx.ObserverFuncs[receipt]{
		Complete: func() { log.Info("slow save completed") },
	})
	time.Sleep(50 * time.Millisecond)
	sub.Unsubscribe()
	log.With("is_executing", cmd.IsExecuting().Value()).Info("slow save cancelled")

	connected.Set(false)
	connected.Set(true)
}

func saveDocument(ctx context.Context, doc document) (receipt, error) {
	if doc.Body == "" {
		return receipt{}, errx.New("document is empty",
			errx.WithCode(codeEmptyDocument),
			errx.WithDetails(errx.D{"id": doc.ID}),
		)
	}

	delay := time.Duration(len(doc.Body)) * 10 * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return receipt{}, errx.Wrap(ctx.Err())
	}

	return receipt{ID: doc.ID, Bytes: len(doc.Body)}, nil
}

func consume(log logger.Logger, messages <-chan *message.Message) {
	for msg := range messages {
		env, err := broadcast.Decode(msg)
		msg.Ack()
		if err != nil {
			log.Warnx(err)
			continue
		}
		log.With("kind", env.Kind, "state", env.State.String(), "invocation", env.Invocation).Debug("event received")
	}
}
