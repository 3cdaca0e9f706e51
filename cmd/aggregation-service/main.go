package main

import (
	"time"

	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/breaker"
	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/service/aggregation/application"
	"bazaar/internal/service/aggregation/infrastructure/adapter"
	"bazaar/internal/service/aggregation/interfaces"
)

const (
	serviceName = "aggregation-service"
	servicePort = 8085
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Cfg
			tracer := otel.Tracer(serviceName)

			var resolver httpclient.Resolver = httpclient.StaticResolver(cfg.Services)
			if appCtx.Nacos != nil {
				resolver = appCtx.Nacos
			}
			client := httpclient.New(tracer, resolver, 3*time.Second)

			breakers := breaker.NewRegistry(cfg.Breakers)
			service := application.NewAggregationService(
				adapter.NewProductHTTPAdapter(client),
				adapter.NewInventoryHTTPAdapter(client),
				breakers.Get("aggregation-product"),
				breakers.Get("aggregation-inventory"),
				tracer,
			)

			interfaces.NewAggregationHandler(service).RegisterRoutes(appCtx.Mux)
		},
	})
}
