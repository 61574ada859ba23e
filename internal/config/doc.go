// Package config assembles runtime settings for the provas client.
//
// Sources are applied in order, each one overriding the previous:
//
//  1. built-in defaults (LoadDefaults)
//  2. an optional JSON file given with -c / -config
//  3. PROVAS_* environment variables
//  4. command-line flags
//
// The merged result is validated before it is returned.
package config
