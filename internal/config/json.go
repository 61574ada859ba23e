package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/provas/internal/flagx"
	"github.com/dmitrijs2005/provas/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from a zero value so a file only overrides what it sets.
type JsonConfig struct {
	StorageBackend         *string         `json:"storage_backend"`
	DatabasePath           *string         `json:"database_path"`
	RedisAddr              *string         `json:"redis_addr"`
	RedisDB                *int            `json:"redis_db"`
	SlotKey                *string         `json:"slot_key"`
	EncryptLocal           *bool           `json:"encrypt_local"`
	CatalogBackend         *string         `json:"catalog_backend"`
	CatalogCollection      *string         `json:"catalog_collection"`
	CatalogRefreshInterval *timex.Duration `json:"catalog_refresh_interval"`
	FirestoreProject       *string         `json:"firestore_project"`
	FirestoreCredentials   *string         `json:"firestore_credentials"`
	S3Bucket               *string         `json:"s3_bucket"`
	S3Region               *string         `json:"s3_region"`
	S3BaseEndpoint         *string         `json:"s3_base_endpoint"`
	S3AccessKey            *string         `json:"s3_access_key"`
	S3SecretKey            *string         `json:"s3_secret_key"`
	PostgresDSN            *string         `json:"postgres_dsn"`
	IDScheme               *string         `json:"id_scheme"`
	IDToken                *string         `json:"id_token"`
	IDTokenSecret          *string         `json:"id_token_secret"`
	LogLevel               *string         `json:"log_level"`
	LogBackend             *string         `json:"log_backend"`
	LogFormat              *string         `json:"log_format"`
}

// parseJson overlays the file named by -c / -config, if any.
func parseJson(config *Config) error {
	path := flagx.ConfigPath(args())
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	var c JsonConfig
	if err := json.Unmarshal(file, &c); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	set(&config.StorageBackend, c.StorageBackend)
	set(&config.DatabasePath, c.DatabasePath)
	set(&config.RedisAddr, c.RedisAddr)
	set(&config.RedisDB, c.RedisDB)
	set(&config.SlotKey, c.SlotKey)
	set(&config.EncryptLocal, c.EncryptLocal)
	set(&config.CatalogBackend, c.CatalogBackend)
	set(&config.CatalogCollection, c.CatalogCollection)
	if c.CatalogRefreshInterval != nil {
		config.CatalogRefreshInterval = c.CatalogRefreshInterval.Duration
	}
	set(&config.FirestoreProject, c.FirestoreProject)
	set(&config.FirestoreCredentials, c.FirestoreCredentials)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3AccessKey, c.S3AccessKey)
	set(&config.S3SecretKey, c.S3SecretKey)
	set(&config.PostgresDSN, c.PostgresDSN)
	set(&config.IDScheme, c.IDScheme)
	set(&config.IDToken, c.IDToken)
	set(&config.IDTokenSecret, c.IDTokenSecret)
	set(&config.LogLevel, c.LogLevel)
	set(&config.LogBackend, c.LogBackend)
	set(&config.LogFormat, c.LogFormat)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
