package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Contracts     ContractsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Eventing      EventingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KHIDMATY_APP_ENV" required:"true"`
	Port         string `envconfig:"KHIDMATY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KHIDMATY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KHIDMATY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"KHIDMATY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"KHIDMATY_DB_DSN"`
	Driver string `envconfig:"KHIDMATY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KHIDMATY_DB_HOST"`
	Port     int    `envconfig:"KHIDMATY_DB_PORT" default:"5432"`
	User     string `envconfig:"KHIDMATY_DB_USER"`
	Password string `envconfig:"KHIDMATY_DB_PASSWORD"`
	Name     string `envconfig:"KHIDMATY_DB_NAME"`
	SSLMode  string `envconfig:"KHIDMATY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KHIDMATY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KHIDMATY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KHIDMATY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KHIDMATY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from discrete parts when one is not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either KHIDMATY_DB_DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"KHIDMATY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KHIDMATY_REDIS_ADDR"`
	Password     string        `envconfig:"KHIDMATY_REDIS_PASSWORD"`
	DB           int           `envconfig:"KHIDMATY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KHIDMATY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KHIDMATY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KHIDMATY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KHIDMATY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KHIDMATY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"KHIDMATY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"KHIDMATY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"KHIDMATY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"KHIDMATY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KHIDMATY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KHIDMATY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KHIDMATY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KHIDMATY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KHIDMATY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"KHIDMATY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"KHIDMATY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"KHIDMATY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"KHIDMATY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"KHIDMATY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"KHIDMATY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KHIDMATY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KHIDMATY_AUTO_MIGRATE" default:"false"`
}

// ContractsConfig tunes the contract lifecycle core.
type ContractsConfig struct {
	// LockTTL bounds how long a per-contract mutation lock may be held before
	// it expires on its own.
	LockTTL time.Duration `envconfig:"KHIDMATY_CONTRACT_LOCK_TTL" default:"15s"`
	// OrphanGracePeriod is how old a signature row must be before the
	// reconciler reports it as orphaned.
	OrphanGracePeriod time.Duration `envconfig:"KHIDMATY_CONTRACT_ORPHAN_GRACE" default:"5m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KHIDMATY_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"KHIDMATY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KHIDMATY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ContractsTopic            string `envconfig:"KHIDMATY_PUBSUB_CONTRACTS_TOPIC" default:"kh-contract-events"`
	ContractsSubscription     string `envconfig:"KHIDMATY_PUBSUB_CONTRACTS_SUBSCRIPTION" required:"true"`
	NotificationsTopic        string `envconfig:"KHIDMATY_PUBSUB_NOTIFICATIONS_TOPIC" default:"kh-notification-events"`
	NotificationsSubscription string `envconfig:"KHIDMATY_PUBSUB_NOTIFICATIONS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KHIDMATY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KHIDMATY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KHIDMATY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"KHIDMATY_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}
