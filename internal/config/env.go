package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Env struct {
	AppAddr  string `yaml:"app_addr" env:"APP_ADDR" env-default:":8080"`
	GinMode  string `yaml:"gin_mode" env:"GIN_MODE"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	DBHost         string `yaml:"db_host" env:"DB_HOST" env-default:"127.0.0.1"`
	DBPort         string `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBUser         string `yaml:"db_user" env:"DB_USER" env-default:"root"`
	DBPassword     string `yaml:"db_password" env:"DB_PASSWORD"`
	DBName         string `yaml:"db_name" env:"DB_NAME" env-default:"car_rental"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE" env-default:"true"`

	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"super-secret-key-change-me"`
	JWTTTL    time.Duration `yaml:"jwt_ttl" env:"JWT_TTL" env-default:"24h"`

	// CardFingerprintSecret keys the HMAC used to deduplicate saved cards.
	CardFingerprintSecret string `yaml:"card_fingerprint_secret" env:"CARD_FINGERPRINT_SECRET" env-default:"card-fingerprint-change-me"`

	RedisAddr      string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"IDEMPOTENCY_TTL" env-default:"24h"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"`
}

// LoadEnv reads config.yaml when present and lets environment variables override it.
func LoadEnv() (Env, error) {
	var env Env
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &env); err != nil {
			return Env{}, fmt.Errorf("read config %s: %w", path, err)
		}
		return env, nil
	}

	if err := cleanenv.ReadEnv(&env); err != nil {
		return Env{}, fmt.Errorf("read env: %w", err)
	}
	return env, nil
}

// DSN builds the MySQL data source name.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser,
		e.DBPassword,
		e.DBHost,
		e.DBPort,
		e.DBName,
	)
}
