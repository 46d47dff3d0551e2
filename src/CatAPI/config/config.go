package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stake-plus/spycat-agency/src/CatAPI/data"
)

type Config struct {
	AppName  string
	Port     string
	LogLevel string

	DBDriver string
	DSN      string
	RedisURL string

	BreedsURL      string
	BreedsTimeout  time.Duration
	BreedsCacheTTL time.Duration

	CORSOrigins       []string
	JWTSecret         string
	RateLimit         int
	DiscordWebhookURL string
	OTLPEndpoint      string
}

// SetDefaults registers every key with its default so AutomaticEnv can
// resolve it and `spycat serve --help` can show it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "Spy-Agency")
	v.SetDefault("port", "8000")
	v.SetDefault("log_level", "info")

	v.SetDefault("db_driver", data.DriverPostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("mysql_dsn", "")
	v.SetDefault("postgres_db", "spycat")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("redis_url", "")

	v.SetDefault("breeds_url", "https://api.thecatapi.com/v1/breeds")
	v.SetDefault("breeds_timeout", 3*time.Second)
	v.SetDefault("breeds_cache_ttl", time.Hour)

	v.SetDefault("cors_origins", "*")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("discord_webhook_url", "")
	v.SetDefault("otel_exporter_otlp_endpoint", "")
}

// Load reads configuration from v. Keys map to upper-case environment
// variables (db_driver -> DB_DRIVER).
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := Config{
		AppName:           v.GetString("app_name"),
		Port:              v.GetString("port"),
		LogLevel:          v.GetString("log_level"),
		DBDriver:          strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		RedisURL:          v.GetString("redis_url"),
		BreedsURL:         v.GetString("breeds_url"),
		BreedsTimeout:     v.GetDuration("breeds_timeout"),
		BreedsCacheTTL:    v.GetDuration("breeds_cache_ttl"),
		CORSOrigins:       splitList(v.GetString("cors_origins")),
		JWTSecret:         v.GetString("jwt_secret"),
		RateLimit:         v.GetInt("rate_limit"),
		DiscordWebhookURL: v.GetString("discord_webhook_url"),
		OTLPEndpoint:      v.GetString("otel_exporter_otlp_endpoint"),
	}

	switch cfg.DBDriver {
	case data.DriverPostgres:
		cfg.DSN = v.GetString("database_url")
		if cfg.DSN == "" {
			cfg.DSN = postgresDSN(v)
		}
	case data.DriverMySQL:
		cfg.DSN = v.GetString("mysql_dsn")
		if cfg.DSN == "" {
			cfg.DSN = v.GetString("database_url")
		}
	case data.DriverSQLite:
		cfg.DSN = v.GetString("database_url")
		if cfg.DSN == "" {
			cfg.DSN = "spycat.db"
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported DB_DRIVER %q (want postgres, mysql or sqlite)", cfg.DBDriver)
	}
	if cfg.DSN == "" {
		return Config{}, fmt.Errorf("config: no database DSN for driver %s", cfg.DBDriver)
	}
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("config: PORT is empty")
	}
	if err := validateOrigins(cfg.CORSOrigins); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit < 0 {
		return Config{}, fmt.Errorf("config: RATE_LIMIT must not be negative")
	}
	return cfg, nil
}

func postgresDSN(v *viper.Viper) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(v.GetString("postgres_user"), v.GetString("postgres_password")),
		Host:   net.JoinHostPort(v.GetString("postgres_host"), v.GetString("postgres_port")),
		Path:   "/" + v.GetString("postgres_db"),
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validateOrigins requires every CORS origin to be "*" or carry an http(s)
// scheme, so a typo cannot widen CORS to every origin.
func validateOrigins(origins []string) error {
	if len(origins) == 0 {
		return fmt.Errorf("config: CORS_ORIGINS is empty")
	}
	for _, o := range origins {
		if o == "*" || strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
			continue
		}
		return fmt.Errorf("config: CORS_ORIGINS entry %q must be * or start with http:// or https://", o)
	}
	return nil
}
