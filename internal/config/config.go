package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// KafkaConfig configures the transaction-applied event publisher.
// An empty broker list disables publishing.
type KafkaConfig struct {
	Brokers string `env:"KAFKA_BROKERS" envDefault:""`
	Topic   string `env:"KAFKA_TOPIC" envDefault:"ledger.transaction_applied"`
}
