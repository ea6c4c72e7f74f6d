package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	AuthModeHeader  = "header"
	AuthModeSession = "session"
	AuthModeToken   = "token"

	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port            string        `env:"PORT,             default=4000"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	// PublicURL is the base URL clients reach the gateway at.
	PublicURL string `env:"PUBLIC_URL, default=http://localhost:4000"`

	Auth      AuthConfig
	Session   SessionConfig
	SQLite    SQLiteConfig
	Directory DirectoryConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Files     FilesConfig
}

type AuthConfig struct {
	// Mode selects the identity resolver for the order routes.
	Mode               string        `env:"AUTH_MODE,             default=session"`
	JWTSecret          string        `env:"JWT_SECRET"`
	TokenTTL           time.Duration `env:"TOKEN_TTL,             default=1h"`
	LoginRatePerMinute int           `env:"LOGIN_RATE_PER_MINUTE, default=10"`
}

type SessionConfig struct {
	Backend      string        `env:"SESSION_BACKEND, default=memory"`
	TTL          time.Duration `env:"SESSION_TTL,     default=0s"`
	CookieSecure bool          `env:"COOKIE_SECURE,   default=false"`
}

type SQLiteConfig struct {
	DSN string `env:"SQLITE_DSN, default=:memory:"`
}

type DirectoryConfig struct {
	Backend string `env:"DIRECTORY_BACKEND, default=memory"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=gateway"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type FilesConfig struct {
	BaseDir string `env:"FILES_BASE_DIR, default=./public"`
	// AllowList maps public names to paths relative to BaseDir, e.g.
	// "readme:readme.txt,guide:docs/guide.md".
	AllowList map[string]string `env:"FILES_ALLOW_LIST, default=readme:readme.txt"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the gateway cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}

	if u, err := url.Parse(c.PublicURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("PUBLIC_URL %q must be an absolute http(s) URL", c.PublicURL))
	}

	switch c.Auth.Mode {
	case AuthModeHeader, AuthModeSession:
	case AuthModeToken:
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("AUTH_MODE=token requires JWT_SECRET"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode))
	}

	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.LoginRatePerMinute <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE must be positive"))
	}

	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}

	switch c.Directory.Backend {
	case BackendMemory, BackendMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown DIRECTORY_BACKEND %q", c.Directory.Backend))
	}

	if c.SQLite.DSN == "" {
		errs = append(errs, errors.New("SQLITE_DSN must not be empty"))
	}
	if c.Files.BaseDir == "" {
		errs = append(errs, errors.New("FILES_BASE_DIR must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
