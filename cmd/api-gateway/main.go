package main

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/pkg/logger"
)

const (
	serviceName = "api-gateway"
	servicePort = 8080
)

// routes maps an API prefix to the service that owns it. Longest prefix
// wins, so /api/aggregation/products does not fall through to products.
var routes = map[string]string{
	"/api/orders":        "order-service",
	"/api/products":      "product-service",
	"/api/inventory":     "inventory-service",
	"/api/aggregation":   "aggregation-service",
	"/api/notifications": "notification-service",
	"/api/auth":          "auth-service",
}

type gateway struct {
	resolver  httpclient.Resolver
	jwtSecret []byte
}

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			var resolver httpclient.Resolver = httpclient.StaticResolver(appCtx.Cfg.Services)
			if appCtx.Nacos != nil {
				resolver = appCtx.Nacos
			}
			gw := &gateway{resolver: resolver, jwtSecret: []byte(appCtx.Cfg.Auth.JWTSecret)}

			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/api/", gw.authenticate(http.HandlerFunc(gw.proxy)))
		},
	})
}

// authenticate enforces a valid bearer token on every route except the
// auth service's own endpoints.
func (g *gateway) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/auth/") {
			next.ServeHTTP(w, r)
			return
		}

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
			return g.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// Downstream services trust the gateway for identity.
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if userID, ok := claims["userId"].(float64); ok {
				r.Header.Set("X-User-Id", strconv.FormatInt(int64(userID), 10))
			}
			if role, ok := claims["role"].(string); ok {
				r.Header.Set("X-User-Role", role)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (g *gateway) proxy(w http.ResponseWriter, r *http.Request) {
	service, ok := routeFor(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "no route for "+r.URL.Path)
		return
	}

	if r.Header.Get("X-Request-Id") == "" {
		r.Header.Set("X-Request-Id", uuid.NewString())
	}

	addr, err := g.resolver.Resolve(service)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("service", service).Msg("route resolution failed")
		writeError(w, http.StatusBadGateway, "service unavailable")
		return
	}
	target := &url.URL{Scheme: "http", Host: addr}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			otel.GetTextMapPropagator().Inject(pr.In.Context(), propagation.HeaderCarrier(pr.Out.Header))
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Ctx(r.Context()).Error().Err(err).Str("service", service).Msg("proxy request failed")
			writeError(w, http.StatusBadGateway, "upstream request failed")
		},
	}
	rp.ServeHTTP(w, r)
}

func routeFor(path string) (string, bool) {
	best := ""
	for prefix := range routes {
		if (path == prefix || strings.HasPrefix(path, prefix+"/")) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "", false
	}
	return routes[best], true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
