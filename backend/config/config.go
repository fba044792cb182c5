package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev  = "dev"
	EnvTest = "test"
	EnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env        string
	ServerPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	CORSOrigins    string
	RateLimitRPS   int
	RateLimitBurst int

	DefaultLanguage string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDev)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "katuripu")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "katuripu.db")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_TTL", 72*time.Hour)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CACHE_TTL", 10*time.Minute)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("DEFAULT_LANGUAGE", "fr")
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	defaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:             strings.ToLower(v.GetString("APP_ENV")),
		ServerPort:      v.GetString("SERVER_PORT"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
		RateLimitRPS:    v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
		DefaultLanguage: strings.ToLower(v.GetString("DEFAULT_LANGUAGE")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.Env == EnvProd && (c.JWTSecret == "" || c.JWTSecret == "secret") {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProd }

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
