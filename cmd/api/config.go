package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/mukulima/ledger/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Postgres        config.PostgresConfig
	Kafka           config.KafkaConfig
}

// kafkaBrokers splits the comma-separated broker list; empty means
// event publishing is disabled.
func (c *apiConfig) kafkaBrokers() []string {
	raw := strings.TrimSpace(c.Kafka.Brokers)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			brokers = append(brokers, p)
		}
	}

	return brokers
}
