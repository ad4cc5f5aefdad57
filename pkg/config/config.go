package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "STOREGRID"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags (tests, errors).
const (
	EnvAppEnv     = "STOREGRID_APP_ENV"
	EnvPort       = "STOREGRID_APP_PORT"
	EnvDBDSN      = "STOREGRID_DB_DSN"
	EnvDBHost     = "STOREGRID_DB_HOST"
	EnvDBUser     = "STOREGRID_DB_USER"
	EnvDBName     = "STOREGRID_DB_NAME"
	EnvRedisURL   = "STOREGRID_REDIS_URL"
	EnvJWTSecret  = "STOREGRID_JWT_SECRET"
	EnvJWTIssuer  = "STOREGRID_JWT_ISSUER"
	EnvJWTExpMins = "STOREGRID_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
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
	Env          string `envconfig:"STOREGRID_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREGRID_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREGRID_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREGRID_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"STOREGRID_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STOREGRID_DB_DSN"`

	LegacyHost     string `envconfig:"STOREGRID_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREGRID_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREGRID_DB_USER"`
	LegacyPassword string `envconfig:"STOREGRID_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREGRID_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREGRID_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREGRID_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREGRID_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREGRID_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREGRID_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:     db.LegacyName,
		RawQuery: "sslmode=" + db.LegacySSLMode,
	}
	db.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREGRID_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREGRID_REDIS_ADDR"`
	Password     string        `envconfig:"STOREGRID_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREGRID_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREGRID_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREGRID_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREGRID_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREGRID_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREGRID_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOREGRID_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOREGRID_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STOREGRID_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STOREGRID_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREGRID_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREGRID_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREGRID_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREGRID_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREGRID_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREGRID_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// RateLimitConfig throttles the credential endpoints. A zero window disables
// the limiter.
type RateLimitConfig struct {
	AuthWindow     time.Duration `envconfig:"STOREGRID_AUTH_RATE_WINDOW" default:"1m"`
	AuthIPLimit    int           `envconfig:"STOREGRID_AUTH_RATE_IP_LIMIT" default:"20"`
	AuthEmailLimit int           `envconfig:"STOREGRID_AUTH_RATE_EMAIL_LIMIT" default:"5"`
}
