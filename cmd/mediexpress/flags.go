package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Address        string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"INFO"`
	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"memory"`
	StorageDir     string        `env:"STORAGE_DIR" envDefault:"./data"`
	DatabaseURI    string        `env:"DATABASE_URI"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	CatalogAPIBase string        `env:"CATALOG_API_BASE"`
	StatusCadence  time.Duration `env:"STATUS_CADENCE" envDefault:"10s"`
	TrackInterval  time.Duration `env:"TRACK_INTERVAL" envDefault:"5s"`
	USDToINR       float64       `env:"USD_INR_RATE" envDefault:"83.5"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL         time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AMQPURL        string        `env:"AMQP_URL"`
	KafkaBrokers   string        `env:"KAFKA_BROKERS"`
	KafkaTopic     string        `env:"KAFKA_TOPIC" envDefault:"order-status"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	backend := flag.String("s", cfg.StorageBackend, "Storage backend: memory, file, redis or postgres")
	storageDir := flag.String("f", cfg.StorageDir, "Directory for the file backend")
	databaseURI := flag.String("d", cfg.DatabaseURI, "Database connection string")
	redisAddr := flag.String("redis", cfg.RedisAddr, "Redis address for the redis backend")
	catalogBase := flag.String("c", cfg.CatalogAPIBase, "Remote catalog base URL (empty uses the built-in list)")
	cadence := flag.Duration("cadence", cfg.StatusCadence, "Time an order spends in each stage")
	trackInterval := flag.Duration("i", cfg.TrackInterval, "Poll interval for order tracking streams")
	jwtTTL := flag.Duration("t", cfg.JWTTTL, "TTL for JWT token(e.g. 24h; 30m )")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.StorageBackend = *backend
	cfg.StorageDir = *storageDir
	cfg.DatabaseURI = *databaseURI
	cfg.RedisAddr = *redisAddr
	cfg.CatalogAPIBase = *catalogBase
	cfg.StatusCadence = *cadence
	cfg.TrackInterval = *trackInterval
	cfg.JWTTTL = *jwtTTL

	if cfg.USDToINR <= 0 {
		return nil, fmt.Errorf("USD_INR_RATE must be positive, got %v", cfg.USDToINR)
	}
	return cfg, nil
}
