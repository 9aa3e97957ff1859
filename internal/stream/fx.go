package stream

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("stream",
	fx.Provide(NewRouter),
	fx.Provide(NewSupervisor),
	fx.Invoke(registerShutdown),
)

func registerShutdown(lc fx.Lifecycle, s *Supervisor) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
			defer cancel()
			return s.Close(closeCtx)
		},
	})
}
