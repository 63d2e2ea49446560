package configs

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

// Config holds application configuration loaded from environment variables and optional config file.
type Config struct {
	Port        string `mapstructure:"PORT" validate:"required"`
	StoreDriver string `mapstructure:"STORE_DRIVER" validate:"oneof=memory redis postgres"`

	// Redis, used by the redis store and the shared login limiter.
	RedisAddr      string `mapstructure:"REDIS_ADDR" validate:"required_if=StoreDriver redis"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	RedisKeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"`

	// Postgres, used by the postgres store.
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required_if=StoreDriver postgres"`
	ReplicaDbAddr string `mapstructure:"REPLICA_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	// Credentials
	JwtSecret       string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	JwtAlgorithm    string        `mapstructure:"JWT_ALGORITHM" validate:"oneof=HS256 HS384 HS512"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL" validate:"gt=0"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL" validate:"gt=0"`
	RenewTokenTTL   time.Duration `mapstructure:"RENEW_TOKEN_TTL" validate:"gt=0"`
	BcryptCost      int           `mapstructure:"BCRYPT_COST" validate:"min=4,max=31"`

	// Transfers
	RollbackMaxAttempts int           `mapstructure:"ROLLBACK_MAX_ATTEMPTS" validate:"min=1"`
	RollbackBaseBackoff time.Duration `mapstructure:"ROLLBACK_BASE_BACKOFF" validate:"gt=0"`
	RollbackMaxBackoff  time.Duration `mapstructure:"ROLLBACK_MAX_BACKOFF" validate:"gtefield=RollbackBaseBackoff"`

	// Login rate limit, per second across all instances when redis is configured.
	LoginRateLimit int `mapstructure:"LOGIN_RATE_LIMIT" validate:"min=0"`
	LoginRateBurst int `mapstructure:"LOGIN_RATE_BURST" validate:"min=1"`

	// Ledger events; an empty broker list disables publishing.
	KafkaBrokers         string        `mapstructure:"KAFKA_BROKERS"`
	KafkaLedgerTopic     string        `mapstructure:"KAFKA_LEDGER_TOPIC" validate:"required_with=KafkaBrokers"`
	KafkaPartition       uint32        `mapstructure:"KAFKA_PARTITION" validate:"min=1"`
	KafkaLedgerRetention time.Duration `mapstructure:"KAFKA_LEDGER_RETENTION"`

	CorsAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CorsAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STORE_DRIVER", StoreDriverMemory)
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("JWT_ALGORITHM", "HS256")
	viper.SetDefault("ACCESS_TOKEN_TTL", "30m")
	viper.SetDefault("REFRESH_TOKEN_TTL", "168h")
	viper.SetDefault("RENEW_TOKEN_TTL", "15m")
	viper.SetDefault("BCRYPT_COST", "10")
	viper.SetDefault("ROLLBACK_MAX_ATTEMPTS", "3")
	viper.SetDefault("ROLLBACK_BASE_BACKOFF", "50ms")
	viper.SetDefault("ROLLBACK_MAX_BACKOFF", "2s")
	viper.SetDefault("LOGIN_RATE_LIMIT", "10")
	viper.SetDefault("LOGIN_RATE_BURST", "20")
	viper.SetDefault("KAFKA_LEDGER_TOPIC", "ledger-events")
	viper.SetDefault("KAFKA_PARTITION", "4")
	viper.SetDefault("KAFKA_LEDGER_RETENTION", "168h")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load reads configuration from environment (and optional config file), then validates it.
func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app")
	viper.AutomaticEnv()
	setDefaults()

	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/ledger-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// REDIS_URL fills in when REDIS_ADDR is unset.
	if !utils.IsEmpty(cfg.RedisURL) && utils.IsEmpty(cfg.RedisAddr) {
		cfg.RedisAddr = cfg.RedisURL
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
