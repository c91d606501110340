package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Ethereum node configuration
	Ethereum EthereumConfig

	// Signing wallet
	Wallet WalletConfig

	// Deployed contracts
	Contracts ContractsConfig

	// Read aggregation
	Reader ReaderConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Logging configuration
	Log LogConfig

	// Tracing configuration
	Telemetry TelemetryConfig
}

// EthereumConfig holds Ethereum node connection settings
type EthereumConfig struct {
	RPCURL         string        `envconfig:"ETH_RPC_URL" default:"http://localhost:8545"`
	ChainID        int64         `envconfig:"ETH_CHAIN_ID" default:"1"`
	RequestTimeout time.Duration `envconfig:"ETH_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"ETH_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"ETH_RETRY_DELAY" default:"1s"`
	CallsPerSecond float64       `envconfig:"ETH_CALLS_PER_SECOND" default:"50"`
}

// WalletConfig holds the signing key. An empty key leaves the gateway read-only.
type WalletConfig struct {
	PrivateKey string `envconfig:"WALLET_PRIVATE_KEY" default:""`
}

// ContractsConfig holds the addresses of the deployed contracts
type ContractsConfig struct {
	StakingManagerAddress string `envconfig:"STAKING_MANAGER_ADDRESS" required:"true"`
	ICOAddress            string `envconfig:"TOKEN_ICO_ADDRESS" required:"true"`
	DepositTokenAddress   string `envconfig:"DEPOSIT_TOKEN_ADDRESS" required:"true"`
	RewardTokenAddress    string `envconfig:"REWARD_TOKEN_ADDRESS" required:"true"`
	TokenLogoURL          string `envconfig:"TOKEN_LOGO_URL" default:""`
}

// ReaderConfig holds read aggregation settings
type ReaderConfig struct {
	Concurrency int `envconfig:"READER_CONCURRENCY" default:"4"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Enabled         bool          `envconfig:"DB_ENABLED" default:"false"`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"gateway"`
	Password        string        `envconfig:"DB_PASSWORD" default:"gateway"`
	Name            string        `envconfig:"DB_NAME" default:"staking_gateway"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnectTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled       bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host          string `envconfig:"REDIS_HOST" default:"localhost"`
	Port          int    `envconfig:"REDIS_PORT" default:"6379"`
	Password      string `envconfig:"REDIS_PASSWORD" default:""`
	DB            int    `envconfig:"REDIS_DB" default:"0"`
	EventsChannel string `envconfig:"REDIS_EVENTS_CHANNEL" default:"staking-gateway:events"`
	HistorySize   int64  `envconfig:"REDIS_HISTORY_SIZE" default:"100"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"5m"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"20"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:""`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"staking-gateway"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
