// Package server exposes the takeoff pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tsawler/takeoff"
	"github.com/tsawler/takeoff/config"
	"github.com/tsawler/takeoff/metrics"
	"github.com/tsawler/takeoff/trace"
	"github.com/tsawler/takeoff/trace/zaptrace"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP takeoff service.
type Server struct {
	echo     *echo.Echo
	settings *config.Settings
	analyzer *takeoff.Analyzer
	results  *cache.Cache
	metrics  *metrics.TakeoffMetrics
	registry *prometheus.Registry
	logger   *zap.Logger
}

// New creates a server for settings. A nil logger discards logs.
func New(settings *config.Settings, logger *zap.Logger) (*Server, error) {
	if settings == nil {
		settings = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m, err := metrics.NewTakeoffMetrics(registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:     echo.New(),
		settings: settings,
		results:  cache.New(settings.Server.CacheTTL, 2*settings.Server.CacheTTL),
		metrics:  m,
		registry: registry,
		logger:   logger.Named("server"),
	}
	s.analyzer = takeoff.NewAnalyzer(settings.AnalyzerConfig(),
		takeoff.WithTracer(trace.Multi(zaptrace.New(logger), m)))

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.initMiddleware()
	s.initRoutes()
	return s, nil
}

func (s *Server) initMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			s.logger.Debug("request", fields...)
			return nil
		},
	}))
}

func (s *Server) initRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	s.echo.POST("/extract", s.handleExtract)
	s.echo.POST("/takeoff", s.handleTakeoff)
	s.echo.POST("/cable", s.handleCable)
	s.echo.POST("/overlay", s.handleOverlay)
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on the configured listen address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.settings.Server.Listen))
		errCh <- s.echo.Start(s.settings.Server.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
