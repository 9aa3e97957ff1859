package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/streamlens/streamlens/internal/clock"
	"github.com/streamlens/streamlens/internal/config"
	"github.com/streamlens/streamlens/internal/event"
	"github.com/streamlens/streamlens/internal/migration"
	"github.com/streamlens/streamlens/internal/observability"
	"github.com/streamlens/streamlens/internal/pricebook"
	"github.com/streamlens/streamlens/internal/room"
	"github.com/streamlens/streamlens/internal/server"
	"github.com/streamlens/streamlens/internal/session"
	"github.com/streamlens/streamlens/internal/stats"
	"github.com/streamlens/streamlens/internal/stream"
	"github.com/streamlens/streamlens/internal/upstream"
	"github.com/streamlens/streamlens/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		pricebook.Module,
		room.Module,
		session.Module,
		event.Module,
		stats.Module,
		upstream.Module,
		stream.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
