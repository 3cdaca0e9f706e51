package main

import (
	"context"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/redis"
	"bazaar/internal/service/product/application"
	"bazaar/internal/service/product/infrastructure"
	"bazaar/internal/service/product/interfaces"
)

const (
	serviceName = "product-service"
	servicePort = 8083
)

func main() {
	var redisClient *redis.Client

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Cfg

			db, err := gorm.Open(mysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to connect to mysql")
			}
			repo := infrastructure.NewGormProductRepository(db)
			if err := repo.Migrate(); err != nil {
				zlog.Fatal().Err(err).Msg("failed to migrate products table")
			}

			var cache application.ProductCache = application.NoopCache{}
			if cfg.Infra.Redis.Addr != "" {
				redisClient = redis.New(cfg.Infra.Redis.Addr)
				cache = infrastructure.NewRedisProductCache(redisClient)
			}

			service := application.NewProductApplicationService(repo, cache, otel.Tracer(serviceName))
			interfaces.NewProductHandler(service).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					zlog.Error().Err(err).Msg("error closing redis client")
				}
			}
		},
	})
}
