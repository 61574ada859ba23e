package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/provas/internal/common"
)

// Config holds runtime settings for the provas client.
type Config struct {
	// local collection medium
	StorageBackend string `env:"PROVAS_STORAGE" validate:"oneof=sqlite redis memory"`
	DatabasePath   string `env:"PROVAS_DATABASE_PATH" validate:"required_if=StorageBackend sqlite"`
	RedisAddr      string `env:"PROVAS_REDIS_ADDR" validate:"required_if=StorageBackend redis"`
	RedisDB        int    `env:"PROVAS_REDIS_DB" validate:"gte=0"`
	SlotKey        string `env:"PROVAS_SLOT_KEY" validate:"required"`
	EncryptLocal   bool   `env:"PROVAS_ENCRYPT"`

	// remote catalog
	CatalogBackend         string        `env:"PROVAS_CATALOG_BACKEND" validate:"oneof=firestore s3 postgres"`
	CatalogCollection      string        `env:"PROVAS_CATALOG_COLLECTION" validate:"required"`
	CatalogRefreshInterval time.Duration `env:"PROVAS_CATALOG_REFRESH" validate:"gte=0"`
	FirestoreProject       string        `env:"PROVAS_FIRESTORE_PROJECT" validate:"required_if=CatalogBackend firestore"`
	FirestoreCredentials   string        `env:"PROVAS_FIRESTORE_CREDENTIALS"`
	S3Bucket               string        `env:"PROVAS_S3_BUCKET" validate:"required_if=CatalogBackend s3"`
	S3Region               string        `env:"PROVAS_S3_REGION"`
	S3BaseEndpoint         string        `env:"PROVAS_S3_ENDPOINT" validate:"omitempty,url"`
	S3AccessKey            string        `env:"PROVAS_S3_ACCESS_KEY"`
	S3SecretKey            string        `env:"PROVAS_S3_SECRET_KEY"`
	PostgresDSN            string        `env:"PROVAS_POSTGRES_DSN" validate:"required_if=CatalogBackend postgres"`

	// identity
	IDScheme      string `env:"PROVAS_ID_SCHEME" validate:"oneof=timestamp uuid"`
	IDToken       string `env:"PROVAS_ID_TOKEN"`
	IDTokenSecret string `env:"PROVAS_ID_TOKEN_SECRET" validate:"required_with=IDToken"`

	// logging
	LogLevel   string `env:"PROVAS_LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogBackend string `env:"PROVAS_LOG_BACKEND" validate:"oneof=slog zap"`
	LogFormat  string `env:"PROVAS_LOG_FORMAT" validate:"oneof=text json"`
}

// LoadDefaults populates c with settings that work on a single machine.
func (c *Config) LoadDefaults() {
	c.StorageBackend = "sqlite"
	c.DatabasePath = "provas.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.SlotKey = common.DefaultSlotKey

	c.CatalogBackend = "firestore"
	c.CatalogCollection = common.DefaultCatalogCollection
	c.CatalogRefreshInterval = 30 * time.Second
	c.FirestoreProject = "test-launcher-1c876"
	c.S3Region = "us-east-1"

	c.IDScheme = "timestamp"

	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and os.Args, then validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field in a readable form.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("config: %s fails %q (value %q)", fe.Field(), fe.Tag(), fmt.Sprint(fe.Value()))
	}
	return fmt.Errorf("config: %w", err)
}

func args() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}
