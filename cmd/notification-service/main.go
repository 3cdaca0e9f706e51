package main

import (
	"context"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/notification/application"
	"bazaar/internal/service/notification/domain"
	"bazaar/internal/service/notification/infrastructure"
	"bazaar/internal/service/notification/infrastructure/ws"
	"bazaar/internal/service/notification/interfaces"
)

const (
	serviceName   = "notification-service"
	servicePort   = 8086
	consumerGroup = "notification-service-group"
)

func main() {
	runCtx, cancel := context.WithCancel(context.Background())
	var consumer *infrastructure.OrderEventConsumer

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Cfg

			rules, err := domain.NewRuleSet(cfg.Notification.Rules)
			if err != nil {
				zlog.Fatal().Err(err).Msg("invalid notification rules")
			}
			zlog.Info().Int("rules", rules.Len()).Msg("notification rules compiled")

			hub := ws.NewHub()
			go hub.Run(runCtx)

			service := application.NewNotificationService(rules, hub, otel.Tracer(serviceName))

			reader := mq.NewReader(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderTopic, consumerGroup)
			consumer = infrastructure.NewOrderEventConsumer(reader, service)
			go consumer.Run(runCtx)

			interfaces.NewNotificationHandler(service, hub).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			cancel()
			if consumer != nil {
				if err := consumer.Close(); err != nil {
					zlog.Error().Err(err).Msg("error closing kafka reader")
				}
			}
		},
	})
}
