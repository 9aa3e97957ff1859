package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streamlens/streamlens/internal/config"
	"github.com/streamlens/streamlens/internal/observability"
	obslogger "github.com/streamlens/streamlens/internal/observability/logger"
	"github.com/streamlens/streamlens/internal/pricebook"
	roomdomain "github.com/streamlens/streamlens/internal/room/domain"
	sessiondomain "github.com/streamlens/streamlens/internal/session/domain"
	"github.com/streamlens/streamlens/internal/stats"
	"github.com/streamlens/streamlens/internal/stream"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	roomSvc    roomdomain.Service
	sessionSvc sessiondomain.Service
	statsSvc   *stats.Service
	book       *pricebook.Book
	supervisor *stream.Supervisor
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	RoomSvc    roomdomain.Service
	SessionSvc sessiondomain.Service
	StatsSvc   *stats.Service
	Book       *pricebook.Book
	Supervisor *stream.Supervisor
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		roomSvc:    p.RoomSvc,
		sessionSvc: p.SessionSvc,
		statsSvc:   p.StatsSvc,
		book:       p.Book,
		supervisor: p.Supervisor,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")
	api.POST("/price", s.SetPrice)
	api.GET("/price/:id", s.GetPrice)
	api.POST("/rooms", s.UpsertRoom)
	api.GET("/rooms", s.ListRooms)
	api.POST("/sessions/end", s.EndSession)
	api.GET("/sessions", s.ListSessions)
	api.GET("/sessions/:id", s.GetSession)
	api.GET("/history", s.History)

	s.engine.GET("/ws", s.Live)
}
