package main

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/breaker"
	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/order/application"
	"bazaar/internal/service/order/infrastructure"
	"bazaar/internal/service/order/infrastructure/adapter"
	"bazaar/internal/service/order/interfaces"
)

const (
	serviceName = "order-service"
	servicePort = 8081
)

func main() {
	var writer *kafka.Writer

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Cfg

			db, err := gorm.Open(mysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{})
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to connect to mysql")
			}
			repo := infrastructure.NewGormOrderRepository(db)
			if err := repo.Migrate(); err != nil {
				zlog.Fatal().Err(err).Msg("failed to migrate orders table")
			}

			writer = mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderTopic)
			publisher := infrastructure.NewKafkaEventPublisher(writer)

			tracer := otel.Tracer(serviceName)

			var resolver httpclient.Resolver = httpclient.StaticResolver(cfg.Services)
			if appCtx.Nacos != nil {
				resolver = appCtx.Nacos
			}
			client := httpclient.New(tracer, resolver, 3*time.Second)
			inventory := adapter.NewInventoryHTTPAdapter(client)

			breakers := breaker.NewRegistry(cfg.Breakers)
			service := application.NewOrderApplicationService(
				repo,
				inventory,
				publisher,
				tracer,
				breakers.Get("inventory-availability"),
				breakers.Get("inventory-decrease"),
			)

			interfaces.NewOrderHandler(service).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if writer != nil {
				if err := writer.Close(); err != nil {
					zlog.Error().Err(err).Msg("error closing kafka writer")
				}
			}
		},
	})
}
