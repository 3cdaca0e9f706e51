package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so breaker timeouts and the like can be
// written as "60s" or "250ms" in the yaml file.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// BreakerConfig holds the tunables of one circuit breaker instance.
// Zero fields fall back to the breaker package defaults.
type BreakerConfig struct {
	FailureRateThreshold float64  `yaml:"failureRateThreshold"`
	WindowSize           int      `yaml:"windowSize"`
	MinimumCalls         int      `yaml:"minimumCalls"`
	OpenTimeout          Duration `yaml:"openTimeout"`
	HalfOpenMaxCalls     int      `yaml:"halfOpenMaxCalls"`
	CallTimeout          Duration `yaml:"callTimeout"`
}

type Config struct {
	Infra struct {
		MySQL struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Kafka struct {
			Brokers    []string `yaml:"brokers"`
			OrderTopic string   `yaml:"orderTopic"`
		} `yaml:"kafka"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Zookeeper struct {
			Addrs []string `yaml:"addrs"`
		} `yaml:"zookeeper"`
		Nacos struct {
			Addrs     string `yaml:"addrs"`
			Namespace string `yaml:"namespace"`
			Group     string `yaml:"group"`
		} `yaml:"nacos"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`

	Auth struct {
		JWTSecret string   `yaml:"jwtSecret"`
		TokenTTL  Duration `yaml:"tokenTTL"`
	} `yaml:"auth"`

	Notification struct {
		// CEL expressions; an order event is delivered only when every
		// rule evaluates to true.
		Rules []string `yaml:"rules"`
	} `yaml:"notification"`

	// Breakers is keyed by capability name, e.g. "inventory-availability".
	Breakers map[string]BreakerConfig `yaml:"breakers"`

	// Services maps a service name to a static host:port, used by the
	// http client when Nacos discovery is not available.
	Services map[string]string `yaml:"services"`
}

// Default returns the configuration used when no config file is present,
// suitable for a docker-compose style local deployment.
func Default() *Config {
	cfg := &Config{}
	cfg.Infra.MySQL.DSN = "root:root@tcp(localhost:3306)/bazaar?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.OrderTopic = "order-events"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Auth.JWTSecret = "change-me"
	cfg.Auth.TokenTTL = Duration(24 * time.Hour)
	cfg.Breakers = map[string]BreakerConfig{}
	cfg.Services = map[string]string{
		"order-service":        "localhost:8081",
		"product-service":      "localhost:8083",
		"inventory-service":    "localhost:8084",
		"aggregation-service":  "localhost:8085",
		"notification-service": "localhost:8086",
		"auth-service":         "localhost:8087",
	}
	return cfg
}

// Load builds the configuration from the yaml file named by CONFIG_PATH
// (when set) layered over Default, then applies environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Infra.MySQL.DSN = getEnv("MYSQL_DSN", cfg.Infra.MySQL.DSN)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", cfg.Infra.Redis.Addr)
	if addrs := os.Getenv("ZOOKEEPER_ADDRS"); addrs != "" {
		cfg.Infra.Zookeeper.Addrs = strings.Split(addrs, ",")
	}
	cfg.Infra.Nacos.Addrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.Addrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
