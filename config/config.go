package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8082" validate:"required,numeric"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"slot_db"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"slots.db"`

	// Empty RabbitURL keeps the change feed in-process.
	RabbitURL    string `envconfig:"RABBIT_URL"`
	SlotExchange string `envconfig:"SLOT_EXCHANGE" default:"slots"`

	AuthMode  string `envconfig:"AUTH_MODE" default:"jwt" validate:"oneof=jwt dev"`
	JWTSecret string `envconfig:"JWT_SECRET" validate:"required_if=AuthMode jwt"`

	DeleteConfirmTTL time.Duration `envconfig:"DELETE_CONFIRM_TTL" default:"2m" validate:"gt=0"`

	GenAIAPIKey string `envconfig:"GENAI_API_KEY"`
	GenAIModel  string `envconfig:"GENAI_MODEL" default:"gemini-2.0-flash"`
}

var validate = validator.New()

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[cfg] .env not loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) DevAuth() bool {
	return c.AuthMode == "dev"
}
