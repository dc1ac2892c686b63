package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"journeylens/api/config"
	"journeylens/api/dashboard"
	"journeylens/api/database"
	"journeylens/api/handlers"
	"journeylens/api/journey"
	"journeylens/api/middleware"
	"journeylens/api/source"
	"journeylens/api/store"
	"journeylens/api/theme"
	"journeylens/api/utils"
)

const (
	shutdownTimeout = 5 * time.Second
	initialLoadWait = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// routes holds everything the router needs. Touchpoints is nil when
// ClickHouse is not configured, and its endpoints are then not mounted.
type routes struct {
	Auth        *handlers.AuthHandlers
	Dashboard   *handlers.DashboardHandlers
	Touchpoints *handlers.TouchpointHandlers
	Theme       *handlers.ThemeHandlers
	Field       *handlers.FieldHandlers

	Tokens         *utils.TokenManager
	DefaultKey     string
	FrontendOrigin string
	Logger         *zap.Logger
}

func newRouter(rt routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(rt.Logger), middleware.CORSMiddleware(rt.FrontendOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/field", rt.Field.StreamField)

	api := r.Group("/api")
	{
		api.POST("/signup", rt.Auth.Signup)
		api.POST("/login", rt.Auth.Login)
		api.POST("/logout", rt.Auth.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(rt.Tokens, rt.DefaultKey, rt.Logger))
		{
			dash := protected.Group("/dashboard")
			{
				dash.GET("", rt.Dashboard.GetDashboard)
				dash.POST("/reload", rt.Dashboard.Reload)
				dash.POST("/actions", rt.Dashboard.ApplyAction)
				dash.GET("/stats", rt.Dashboard.GetStats)
			}
			protected.GET("/journeys/:sessionId/disclosure", rt.Dashboard.GetDisclosure)
			protected.GET("/channels/classify", rt.Dashboard.Classify)

			protected.GET("/theme", rt.Theme.GetTheme)
			protected.PUT("/theme", rt.Theme.SetTheme)
			protected.POST("/theme/toggle", rt.Theme.ToggleTheme)

			if rt.Touchpoints != nil {
				protected.POST("/touchpoints", rt.Touchpoints.TrackTouchpoints)
				protected.GET("/touchpoints/counts", rt.Touchpoints.GetTouchpointCountsOverTime)
				protected.GET("/channels/top", rt.Touchpoints.GetTopChannels)
			}
		}
	}
	return r
}

// journeyPipeline picks the journey source and revenue rule from cfg.
// touchpoints may be nil when ClickHouse is not configured.
func journeyPipeline(cfg *config.Config, touchpoints *store.TouchpointStore, logger *zap.Logger) (source.Source, dashboard.AttributionLoader, error) {
	var src source.Source
	switch cfg.Source.Kind {
	case config.SourceClickHouse:
		if touchpoints == nil {
			return nil, nil, errors.New("journey source 'clickhouse' requires ClickHouse to be configured")
		}
		src = touchpoints
	default:
		src = source.NewHTTPSource(cfg.Source.BaseURL, cfg.Source.GetTimeout(), logger)
	}

	var attribution dashboard.AttributionLoader
	switch cfg.Revenue.Strategy {
	case config.RevenueClickHouse:
		if touchpoints == nil {
			return nil, nil, errors.New("revenue strategy 'clickhouse' requires ClickHouse to be configured")
		}
		attribution = touchpoints
	default:
		random := journey.NewRandomAttributor(nil)
		random.MaxValue = cfg.Revenue.MaxValue
		random.MaxSales = cfg.Revenue.MaxSales
		attribution = dashboard.StaticAttribution{Attributor: random}
	}
	return src, attribution, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err = utils.NewLogger(cfg.Log.Level, cfg.Log.Development || verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL (analysts) ---
	pg, err := database.NewPostgresDB(cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL database: %w", err)
	}
	defer pg.Close()

	// --- ClickHouse (touchpoints), optional ---
	var touchpoints *store.TouchpointStore
	if cfg.ClickHouse.Enabled() {
		ch, err := database.NewClickHouseDB(cfg.ClickHouse, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize ClickHouse database: %w", err)
		}
		defer ch.Close()
		touchpoints = store.NewTouchpointStore(ch, cfg.Source.Limit, logger)
	} else {
		logger.Info("ClickHouse not configured, touchpoint endpoints disabled")
	}

	src, attribution, err := journeyPipeline(cfg, touchpoints, logger)
	if err != nil {
		return err
	}
	controller := dashboard.NewController(src, attribution, logger)

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.GetTokenTTL())
	if err != nil {
		return err
	}
	flag := theme.NewFlag(cfg.Server.DarkTheme)

	rt := routes{
		Auth:           handlers.NewAuthHandlers(store.NewAnalystStore(pg.DB, logger), tokens, logger),
		Dashboard:      handlers.NewDashboardHandlers(controller, logger),
		Theme:          handlers.NewThemeHandlers(flag),
		Field:          handlers.NewFieldHandlers(flag, cfg.Field.Particles, cfg.Field.GetFrameInterval(), logger),
		Tokens:         tokens,
		DefaultKey:     cfg.Auth.DefaultKey,
		FrontendOrigin: cfg.Server.FrontendOrigin,
		Logger:         logger,
	}
	if touchpoints != nil {
		rt.Touchpoints = handlers.NewTouchpointHandlers(touchpoints, logger)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: newRouter(rt),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loadCtx, cancel := context.WithTimeout(gctx, initialLoadWait)
		defer cancel()
		// A failed first load is reported through the dashboard state.
		if err := controller.Load(loadCtx); err != nil {
			logger.Warn("initial journey load failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("journeylens API starting", zap.String("addr", "http://localhost:"+cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("server exiting")
	return err
}
