package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bazaar/internal/pkg/config"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/nacos"
	"bazaar/internal/pkg/tracing"

	zlog "github.com/rs/zerolog/log"
)

// AppCtx is handed to each service's RegisterHandlers so the composition
// root can wire its own routes and dependencies.
type AppCtx struct {
	Mux   *http.ServeMux
	Cfg   *config.Config
	Nacos *nacos.Client // nil when no registry is configured
}

// AppInfo carries everything StartService needs to run one microservice.
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// OnShutdown runs during graceful shutdown, before the HTTP server
	// closes. Use it to stop consumers and close writers.
	OnShutdown func(ctx context.Context)
}

// StartService owns the shared lifecycle of every service in the system:
// config, logging, tracing, registry registration, HTTP serving and
// graceful shutdown. It blocks until SIGINT/SIGTERM.
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	var registry *nacos.Client
	var ip string
	if cfg.Infra.Nacos.Addrs != "" {
		registry, err = nacos.NewClient(cfg.Infra.Nacos.Addrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = outboundIP()
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to determine outbound IP address")
		}
		if err := registry.Register(info.ServiceName, ip, info.Port); err != nil {
			zlog.Fatal().Err(err).Msg("failed to register service with nacos")
		}
		zlog.Info().Str("ip", ip).Int("port", info.Port).Msg("registered with nacos")
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Cfg: cfg, Nacos: registry})
	}

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(info.Port),
		Handler: logger.Middleware(mux),
	}
	go func() {
		zlog.Info().Int("port", info.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Teardown order: leave the registry first so no new traffic arrives,
	// then service-specific cleanup, then flush traces, then close the
	// server.
	if registry != nil {
		if err := registry.Deregister(info.ServiceName, ip, info.Port); err != nil {
			zlog.Error().Err(err).Msg("error deregistering from nacos")
		}
	}
	if info.OnShutdown != nil {
		info.OnShutdown(ctx)
	}
	if err := tp.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down tracer provider")
	}
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down http server")
	}
	zlog.Info().Msg("shut down cleanly")
}

// outboundIP finds the primary non-loopback address by dialing out; no
// packets are actually sent for UDP.
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
