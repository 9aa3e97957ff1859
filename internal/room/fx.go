package room

import (
	"github.com/streamlens/streamlens/internal/room/service"
	"go.uber.org/fx"
)

var Module = fx.Module("room.service",
	fx.Provide(service.NewService),
)
