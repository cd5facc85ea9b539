package config

import "time"

type Config struct {
	Service     *ServiceConfig
	Postgres    *PostgresConfig
	Redis       *RedisConfig
	OpenAI      *OpenAIConfig
	Tracer      *TracerConfig
	Logger      *LoggerConfig
	Presence    *PresenceConfig
	SecretToken string
}

type ServiceConfig struct {
	Name string
	Env  string
	Addr string
}

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	PingTimeout  time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type TracerConfig struct {
	Address string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type PresenceConfig struct {
	// TTL of the Redis last-seen marker; refreshed on this cadence while
	// the connection stays open.
	TTL             time.Duration
	RefreshInterval time.Duration
}
