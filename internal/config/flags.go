package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/provas/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-s string   storage backend (sqlite, redis, memory)
//	-d string   SQLite database path
//	-r string   Redis address
//	-k string   slot key
//	-b string   catalog backend (firestore, s3, postgres)
//	-n string   catalog collection
//	-i duration catalog refresh interval (e.g. "30s")
//	-l string   log level
//
// Other arguments are filtered out first so they do not break parsing.
func parseFlags(config *Config) error {
	filtered := flagx.FilterArgs(args(), []string{"-s", "-d", "-r", "-k", "-b", "-n", "-i", "-l"})

	fs := flag.NewFlagSet("provas", flag.ContinueOnError)

	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabasePath, "d", config.DatabasePath, "SQLite database path")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.SlotKey, "k", config.SlotKey, "slot key")
	fs.StringVar(&config.CatalogBackend, "b", config.CatalogBackend, "catalog backend")
	fs.StringVar(&config.CatalogCollection, "n", config.CatalogCollection, "catalog collection")
	fs.DurationVar(&config.CatalogRefreshInterval, "i", config.CatalogRefreshInterval, "catalog refresh interval")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("config flags: %w", err)
	}
	return nil
}
