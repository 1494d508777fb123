// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Поддерживаемые драйверы хранилища пользователей.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string          `yaml:"env" env:"ENV" env-default:"local"`
	GRPCAuthAddress string          `yaml:"grpc_auth_address" env:"GRPC_AUTH_ADDRESS"`
	ProfileCacheTTL time.Duration   `yaml:"profile_cache_ttl" env:"PROFILE_CACHE_TTL" env-default:"10m"`
	Storage         Storage         `yaml:"storage"`
	Redis           RedisConnection `yaml:"redis_connection"`
	RabbitMQ        RabbitMQ        `yaml:"rabbitmq"`
	Password        Password        `yaml:"password"`
	LoginGuard      LoginGuard      `yaml:"login_guard"`
	RateLimit       RateLimit       `yaml:"rate_limit"`
	CORS            CORS            `yaml:"cors"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":3001"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Storage структура для выбора и настройки хранилища пользователей
type Storage struct {
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	PostgresDSN    string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	MongoURI       string `yaml:"mongo_uri" env:"MONGO_URI" env-default:"mongodb://127.0.0.1:27017"`
	MongoDatabase  string `yaml:"mongo_database" env:"MONGO_DATABASE" env-default:"Data"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает защиту от перебора паролей и кэш профилей.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT"`
}

// RabbitMQ структура для публикации событий об учётных записях.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"accounts"`
}

// Password структура для настройки хэширования паролей
type Password struct {
	Cost int `yaml:"cost" env:"PASSWORD_COST" env-default:"10"`
}

// LoginGuard структура для ограничения числа неудачных попыток входа.
// MaxAttempts == 0 отключает ограничение.
type LoginGuard struct {
	MaxAttempts int           `yaml:"max_attempts" env:"LOGIN_MAX_ATTEMPTS" env-default:"5"`
	Window      time.Duration `yaml:"window" env:"LOGIN_WINDOW" env-default:"15m"`
}

// RateLimit структура для ограничения частоты запросов к открытым эндпоинтам
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"10"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

// CORS структура для настройки разрешённых источников фронтенда
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:3000"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"1h"`
	Issuer       string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"visionlab-auth"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, применяет переменные окружения и проверяет его
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file: %s - does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет обязательные и взаимозависимые поля конфига
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt secret key is required")
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("postgres_dsn is required for postgres driver")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("mongo_uri is required for mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

// String возвращает конфиг в читаемом виде, секреты скрыты
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  MigrationsPath: %s\n"+
			"  MongoDatabase: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPCAuthAddress: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"LoginGuard:\n"+
			"  MaxAttempts: %d\n"+
			"  Window: %s\n",
		c.Env,
		c.Storage.Driver,
		c.Storage.MigrationsPath,
		c.Storage.MongoDatabase,
		c.Redis.AddressRedis,
		c.Redis.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.GRPCAuthAddress,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		c.LoginGuard.MaxAttempts,
		c.LoginGuard.Window,
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
