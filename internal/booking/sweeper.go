package booking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper runs AutoCheckout once at start and then on a fixed interval.  A
// failed run is logged and retried on the next tick.
type Sweeper struct {
	svc        *Service
	interval   time.Duration
	log        *logrus.Entry
	onCheckout func(ctx context.Context, n int64)
}

// NewSweeper returns a Sweeper for svc.
func NewSweeper(svc *Service, interval time.Duration, log *logrus.Logger) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, log: log.WithField("component", "checkout-sweeper")}
}

// OnCheckout registers fn to run after every sweep that checked out at
// least one reservation, with the number checked out.
func (w *Sweeper) OnCheckout(fn func(ctx context.Context, n int64)) *Sweeper {
	w.onCheckout = fn
	return w
}

// Run blocks until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	w.log.WithField("interval", w.interval.String()).Info("checkout sweeper started")
	w.RunOnce(ctx)

	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("checkout sweeper stopped")
			return
		case <-t.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns the number of reservations
// checked out.  Errors are logged, not returned.
func (w *Sweeper) RunOnce(ctx context.Context) int64 {
	start := time.Now()
	n, err := w.svc.AutoCheckout(ctx)
	entry := w.log.WithField("took", time.Since(start).String())
	if err != nil {
		entry.WithError(err).Error("auto-checkout sweep failed")
		return 0
	}
	if n > 0 {
		entry.WithField("updated", n).Info("auto-checkout sweep")
		if w.onCheckout != nil {
			w.onCheckout(ctx, n)
		}
	} else {
		entry.Debug("auto-checkout sweep: nothing to do")
	}
	return n
}
