package pricebook

import (
	"github.com/streamlens/streamlens/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("pricebook",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *Book {
		return New(cfg.PriceBookPath, log)
	}),
)
