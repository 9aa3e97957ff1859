package upstream

import (
	"github.com/streamlens/streamlens/internal/config"
	"github.com/streamlens/streamlens/internal/stream"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("upstream",
	fx.Provide(func(cfg config.Config, log *zap.Logger) stream.Connector {
		return NewConnector(cfg.UpstreamURL, log)
	}),
)
