package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries every externally sourced setting. It is built once in main
// and handed to constructors explicitly.
type Config struct {
	HTTPAddress string

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	JWTSecret    string
	JWTAlgorithm string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Cookie lifetimes are deliberately separate from the token TTLs: the
	// refresh cookie currently outlives the refresh claim (60d vs 30d) and
	// changing either is a product decision, not a code one.
	AccessCookieMaxAge  time.Duration
	RefreshCookieMaxAge time.Duration
	CookieDomain        string
	CookieSecure        bool

	RedisAddress   string
	RedisPassword  string
	RedisDB        int
	WalletCacheTTL time.Duration

	AllowedOrigins   []string
	AllowCredentials bool
}

var envKeys = []string{
	"HTTP_ADDRESS",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"JWT_SECRET", "JWT_ALGORITHM",
	"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	"ACCESS_COOKIE_MAX_AGE", "REFRESH_COOKIE_MAX_AGE",
	"COOKIE_DOMAIN", "COOKIE_SECURE",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "WALLET_CACHE_TTL",
	"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "walletpay")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h") // 30 days
	v.SetDefault("ACCESS_COOKIE_MAX_AGE", "30m")
	v.SetDefault("REFRESH_COOKIE_MAX_AGE", "1440h") // 60 days
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("WALLET_CACHE_TTL", "1m")
	v.SetDefault("ALLOW_CREDENTIALS", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddress:         v.GetString("HTTP_ADDRESS"),
		DBHost:              v.GetString("DB_HOST"),
		DBPort:              v.GetInt("DB_PORT"),
		DBName:              v.GetString("DB_NAME"),
		DBUser:              v.GetString("DB_USER"),
		DBPassword:          v.GetString("DB_PASSWORD"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTAlgorithm:        v.GetString("JWT_ALGORITHM"),
		AccessTokenTTL:      v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:     v.GetDuration("REFRESH_TOKEN_TTL"),
		AccessCookieMaxAge:  v.GetDuration("ACCESS_COOKIE_MAX_AGE"),
		RefreshCookieMaxAge: v.GetDuration("REFRESH_COOKIE_MAX_AGE"),
		CookieDomain:        v.GetString("COOKIE_DOMAIN"),
		CookieSecure:        v.GetBool("COOKIE_SECURE"),
		RedisAddress:        v.GetString("REDIS_ADDRESS"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisDB:             v.GetInt("REDIS_DB"),
		WalletCacheTTL:      v.GetDuration("WALLET_CACHE_TTL"),
		AllowedOrigins:      v.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials:    v.GetBool("ALLOW_CREDENTIALS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return cfg, nil
}

// DatabaseDSN composes the postgres connection string from its components.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
