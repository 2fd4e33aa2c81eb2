package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Notify        NotifyConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Ledger        LedgerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.validate(cfg.GCP, cfg.PubSub); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string   `envconfig:"HOURSTAY_APP_ENV" required:"true"`
	Port           string   `envconfig:"HOURSTAY_APP_PORT" required:"true"`
	LogLevel       string   `envconfig:"HOURSTAY_LOG_LEVEL" default:"info"`
	LogWarnStack   bool     `envconfig:"HOURSTAY_LOG_WARN_STACK" default:"false"`
	AllowedOrigins []string `envconfig:"HOURSTAY_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HOURSTAY_DB_DSN"`
	Driver string `envconfig:"HOURSTAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HOURSTAY_DB_HOST"`
	LegacyPort     int    `envconfig:"HOURSTAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOURSTAY_DB_USER"`
	LegacyPassword string `envconfig:"HOURSTAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOURSTAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOURSTAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HOURSTAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOURSTAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOURSTAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOURSTAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this as warnings. Zero disables.
	SlowQueryThreshold time.Duration `envconfig:"HOURSTAY_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOURSTAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HOURSTAY_REDIS_ADDR"`
	Password     string        `envconfig:"HOURSTAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOURSTAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOURSTAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOURSTAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOURSTAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOURSTAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOURSTAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HOURSTAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HOURSTAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HOURSTAY_JWT_EXPIRATION_MINUTES" required:"true"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HOURSTAY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HOURSTAY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HOURSTAY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HOURSTAY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HOURSTAY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"HOURSTAY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"HOURSTAY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"HOURSTAY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HOURSTAY_AUTO_MIGRATE" default:"false"`
}

type NotifyConfig struct {
	Driver  string        `envconfig:"HOURSTAY_NOTIFY_DRIVER" default:"log"`
	Timeout time.Duration `envconfig:"HOURSTAY_NOTIFY_TIMEOUT" default:"3s"`
}

func (n NotifyConfig) validate(gcp GCPConfig, ps PubSubConfig) error {
	switch strings.ToLower(strings.TrimSpace(n.Driver)) {
	case NotifyDriverLog, "":
		return nil
	case NotifyDriverPubSub:
		missing := []string{}
		if strings.TrimSpace(gcp.ProjectID) == "" {
			missing = append(missing, EnvGCPProjectID)
		}
		if strings.TrimSpace(ps.ListingApprovedTopic) == "" {
			missing = append(missing, EnvPubSubListingApprovedTopic)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s=pubsub requires %s", EnvNotifyDriver, strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvNotifyDriver, n.Driver)
	}
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HOURSTAY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"HOURSTAY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HOURSTAY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ListingApprovedTopic string `envconfig:"HOURSTAY_PUBSUB_LISTING_APPROVED_TOPIC"`
}

type LedgerConfig struct {
	// LapsedWithinDays bounds the default lookback of the lapsed-listing report.
	LapsedWithinDays int `envconfig:"HOURSTAY_LEDGER_LAPSED_WITHIN_DAYS" default:"30"`
}

// ensureDSN assembles a postgres URL from the discrete HOURSTAY_DB_* parts
// when no DSN is given. The sqlite driver needs only a DSN (a file path).
func (db *DBConfig) ensureDSN() error {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	switch driver {
	case "", DBDriverPostgres:
		db.Driver = DBDriverPostgres
	case DBDriverSQLite:
		db.Driver = DBDriverSQLite
		if db.DSN == "" {
			return fmt.Errorf("%s=sqlite requires %s", EnvDBDriver, EnvDBDSN)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for env, value := range map[string]string{EnvDBHost: db.LegacyHost, EnvDBUser: db.LegacyUser, EnvDBName: db.LegacyName} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	user := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		user = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   net.JoinHostPort(db.LegacyHost, strconv.Itoa(db.LegacyPort)),
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {db.LegacySSLMode}}.Encode()
	}
	db.DSN = dsn.String()
	return nil
}
