// Package config loads the optional quillconf configuration file. The
// file exists so the database location can be pinned per deployment
// instead of repeated on every invocation; the value is handed to the
// commands explicitly, never read from ambient process state.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds deployment settings.
type Config struct {
	// Database is the path to the SQLite cvar store.
	Database string `yaml:"database"`
}

// Load reads a YAML config file. Unknown fields are rejected so a typo
// in the file surfaces instead of silently defaulting.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Database == "" {
		return Config{}, fmt.Errorf("config %s: database path is required", path)
	}
	return cfg, nil
}
