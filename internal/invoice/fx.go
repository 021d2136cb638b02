package invoice

import (
	"context"

	"github.com/smallbiznis/faktura/internal/invoice/render"
	"github.com/smallbiznis/faktura/internal/invoice/service"
	"github.com/smallbiznis/faktura/internal/invoice/worker"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
	fx.Provide(worker.NewWorker),
	fx.Invoke(runOverdueWorker),
)

func runOverdueWorker(lc fx.Lifecycle, w *worker.Worker) {
	// The OnStart context only covers startup, so the sweep loop gets its own
	// context cancelled on shutdown.
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go w.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
