package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port        string            `mapstructure:"port"`
	JWTSecret   string            `mapstructure:"jwt_secret"`
	Transport   string            `mapstructure:"transport"` // local | redis
	MongoSQL    DatabaseConfig    `mapstructure:"mongo"`
	PostgreSQL  DatabaseConfig    `mapstructure:"pg"`
	Redis       RedisConfig       `mapstructure:"redis"`
	EventStream EventStreamConfig `mapstructure:"event_stream"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	Presence    PresenceConfig    `mapstructure:"presence"`
	Paging      PagingConfig      `mapstructure:"paging"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int    `mapstructure:"redis_db"`
	Addr    string `mapstructure:"addr"` // 未設定時使用 sentinel
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// EventStreamConfig definition message event stream broker
type EventStreamConfig struct {
	Driver        string   `mapstructure:"driver"` // kafka | rabbitmq | none
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	AMQPURL       string   `mapstructure:"amqp_url"`
	Exchange      string   `mapstructure:"exchange"`
	RetryCount    int      `mapstructure:"retry_count"`
	RetryInterval int      `mapstructure:"retry_interval"`
}

// MinIOConfig definition avatar bucket
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	BucketName    string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval int           `mapstructure:"retry_interval"`
}

// PresenceConfig definition presence store sync
type PresenceConfig struct {
	SyncTimeout  time.Duration `mapstructure:"sync_timeout"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
}

// PagingConfig definition request/response list defaults
type PagingConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// Enabled report whether minio is configured
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}
