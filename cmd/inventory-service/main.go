package main

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/zookeeper"
	"bazaar/internal/service/inventory/application"
	"bazaar/internal/service/inventory/infrastructure"
	"bazaar/internal/service/inventory/interfaces"
)

const (
	serviceName = "inventory-service"
	servicePort = 8084
)

func main() {
	var zkConn *zookeeper.Conn

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Cfg

			db, err := gorm.Open(mysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to connect to mysql")
			}
			repo := infrastructure.NewGormInventoryRepository(db)
			if err := repo.Migrate(); err != nil {
				zlog.Fatal().Err(err).Msg("failed to migrate inventory table")
			}

			// Without ZooKeeper the service still runs, but stock updates
			// are only safe with a single replica.
			var locker application.Locker = application.NoopLocker{}
			if len(cfg.Infra.Zookeeper.Addrs) > 0 {
				zkConn, err = zookeeper.Connect(cfg.Infra.Zookeeper.Addrs, 10*time.Second)
				if err != nil {
					zlog.Fatal().Err(err).Msg("failed to connect to zookeeper")
				}
				locker = infrastructure.NewZkLocker(zkConn)
			} else {
				zlog.Warn().Msg("no zookeeper configured, stock updates are not replica-safe")
			}

			service := application.NewInventoryApplicationService(repo, locker, otel.Tracer(serviceName))
			interfaces.NewInventoryHandler(service).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if zkConn != nil {
				zkConn.Close()
			}
		},
	})
}
