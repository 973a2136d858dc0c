package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr string

	DatabaseURL     string
	DatabaseTimeout time.Duration
	AutoMigrate     bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	CustomerSecret string
	AdminSecret    string
	TokenTTL       time.Duration
	AdminEmail     string
	AdminPassword  string

	PromoCode string
	UploadDir string

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("database.url is required")
	ErrMissingSecret      = errors.New("auth.customer_secret and auth.admin_secret are required")
	ErrSharedSecret       = errors.New("auth.customer_secret and auth.admin_secret must differ")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.timeout", "5s")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.cart_ttl", "72h")
	v.SetDefault("auth.token_ttl", "72h")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("promo.code", "BLOOM10")
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	// required keys have no default but must still be known to viper so
	// AutomaticEnv resolves them
	v.SetDefault("database.url", "")
	v.SetDefault("auth.customer_secret", "")
	v.SetDefault("auth.admin_secret", "")
}

// Load reads .env (if present), an optional config.yaml and BLOOM_* environment
// variables, in increasing order of precedence.
func Load() (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}
	return fromViper(v)
}

// DatabaseURL resolves only database.url, for tools that never serve traffic.
func DatabaseURL() (string, error) {
	v, err := newViper()
	if err != nil {
		return "", err
	}
	dsn := v.GetString("database.url")
	if dsn == "" {
		return "", ErrMissingDatabaseURL
	}
	return dsn, nil
}

func newViper() (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/bloom-aura")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.SetEnvPrefix("BLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Addr:           v.GetString("http.addr"),
		DatabaseURL:    v.GetString("database.url"),
		AutoMigrate:    v.GetBool("database.auto_migrate"),
		RedisAddr:      v.GetString("redis.addr"),
		RedisPassword:  v.GetString("redis.password"),
		RedisDB:        v.GetInt("redis.db"),
		CustomerSecret: v.GetString("auth.customer_secret"),
		AdminSecret:    v.GetString("auth.admin_secret"),
		AdminEmail:     v.GetString("auth.admin_email"),
		AdminPassword:  v.GetString("auth.admin_password"),
		PromoCode:      v.GetString("promo.code"),
		UploadDir:      v.GetString("upload.dir"),
		LogLevel:       v.GetString("log.level"),
		LogFormat:      v.GetString("log.format"),
	}

	var err error
	if cfg.DatabaseTimeout, err = duration(v, "database.timeout"); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = duration(v, "session.cart_ttl"); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = duration(v, "auth.token_ttl"); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	if cfg.CustomerSecret == "" || cfg.AdminSecret == "" {
		return Config{}, ErrMissingSecret
	}
	if cfg.CustomerSecret == cfg.AdminSecret {
		return Config{}, ErrSharedSecret
	}
	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
