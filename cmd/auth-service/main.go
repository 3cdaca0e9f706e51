package main

import (
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/service/auth/application"
	"bazaar/internal/service/auth/infrastructure"
	"bazaar/internal/service/auth/interfaces"
)

const (
	serviceName = "auth-service"
	servicePort = 8087
)

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Cfg

			db, err := gorm.Open(mysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{TranslateError: true})
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to connect to mysql")
			}
			repo := infrastructure.NewGormUserRepository(db)
			if err := repo.Migrate(); err != nil {
				zlog.Fatal().Err(err).Msg("failed to migrate users table")
			}

			service := application.NewAuthService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Std(), otel.Tracer(serviceName))
			interfaces.NewAuthHandler(service).RegisterRoutes(appCtx.Mux)
		},
	})
}
