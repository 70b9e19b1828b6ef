package wrapper

import (
	"context"
	"time"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/rxcommand/alert"
	"github.com/rise-and-shine/rxcommand/handler"
	"github.com/rise-and-shine/rxcommand/logger"
	"github.com/rise-and-shine/rxcommand/meta"
)

const (
	alertTimeout = 3 * time.Second
)

type AlertWrapper[I handler.Input, R handler.Result] struct {
	logger        logger.Logger
	alertProvider alert.Provider
	next          handler.Handler[I, R]
	name          string
}

// NewAlertWrapper sends an alert for every failed execution. The alert is
// sent in the background; the error is returned to the caller unchanged.
func NewAlertWrapper[I handler.Input, R handler.Result](
	l logger.Logger,
	alertProvider alert.Provider,
	name string,
) handler.WrapFunc[I, R] {
	return func(next handler.Handler[I, R]) handler.Handler[I, R] {
		return &AlertWrapper[I, R]{
			logger:        l.Named("handler.alerting"),
			alertProvider: alertProvider,
			next:          next,
			name:          name,
		}
	}
}

func (w *AlertWrapper[I, R]) Execute(ctx context.Context, input I) (R, error) {
	result, err := w.next.Execute(ctx, input)
	if err == nil {
		return result, nil
	}

	e := errx.AsErrorX(err)

	details := make(map[string]string)
	for k, v := range meta.ExtractMetaFromContext(ctx) {
		details[string(k)] = v
	}

	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)

	go func() {
		defer cancel()

		sendErr := w.alertProvider.SendError(alertCtx, e.Code(), err.Error(), "handler: "+w.name, details)
		if sendErr != nil {
			w.logger.With("alert_send_error", sendErr.Error()).Warn("failed to send error alert")
		}
	}()

	return result, err
}
