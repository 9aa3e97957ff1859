package migration

import (
	eventdomain "github.com/streamlens/streamlens/internal/event/domain"
	roomdomain "github.com/streamlens/streamlens/internal/room/domain"
	sessiondomain "github.com/streamlens/streamlens/internal/session/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return conn.AutoMigrate(
			&roomdomain.Room{},
			&sessiondomain.Session{},
			&eventdomain.Record{},
		)
	}),
)
