package worker

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/faktura/internal/config"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepTimeout = 30 * time.Second

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  config.Config
	Service invoicedomain.Service
}

// Worker periodically marks invoices past their due date as overdue.
type Worker struct {
	log      *zap.Logger
	service  invoicedomain.Service
	interval time.Duration
}

func NewWorker(p Params) *Worker {
	interval := p.Config.Invoice.OverdueSweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Worker{
		log:      p.Log.Named("invoice.overdue"),
		service:  p.Service,
		interval: interval,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(); err != nil {
			w.log.Warn("overdue sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce() error {
	if w.service == nil {
		return errors.New("overdue_worker_unavailable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	updated, err := w.service.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	if updated > 0 {
		w.log.Info("invoices marked overdue", zap.Int("count", updated))
	}
	return nil
}
