// Package config loads ProjectHub settings. Later sources win: built-in
// defaults, the JSON config file, a .env file, PROJECTHUB_* environment
// variables, and finally command-line flags applied by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const appName = "projecthub"

// Backends the reference server can store rows in.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config represents the application configuration
type Config struct {
	// Data service URL. Empty runs against the embedded database.
	ServerURL string `json:"server_url,omitempty"`

	// Embedded database file
	DBPath string `json:"db_path,omitempty"`

	LogFile  string `json:"log_file,omitempty"`
	LogLevel string `json:"log_level,omitempty"`

	// Reference server settings
	Addr             string `json:"addr,omitempty"`
	Backend          string `json:"backend,omitempty"`
	JWTSecret        string `json:"jwt_secret,omitempty"`
	FirestoreProject string `json:"firestore_project,omitempty"`
	CredentialsFile  string `json:"credentials_file,omitempty"`
}

// Default returns the configuration used when nothing else is set.
func Default() (*Config, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DBPath:   filepath.Join(dataDir, appName+".db"),
		LogFile:  filepath.Join(dataDir, appName+".log"),
		LogLevel: "info",
		Addr:     ":8080",
		Backend:  BackendSQLite,
	}, nil
}

// Load builds the configuration from path (a missing file is fine), .env and
// the environment.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	set(&c.ServerURL, "PROJECTHUB_SERVER_URL")
	set(&c.DBPath, "PROJECTHUB_DB")
	set(&c.LogFile, "PROJECTHUB_LOG_FILE")
	set(&c.LogLevel, "PROJECTHUB_LOG_LEVEL")
	set(&c.Addr, "PROJECTHUB_ADDR")
	set(&c.Backend, "PROJECTHUB_BACKEND")
	set(&c.JWTSecret, "PROJECTHUB_JWT_SECRET")
	set(&c.FirestoreProject, "PROJECTHUB_FIRESTORE_PROJECT")
	set(&c.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
}

// Save saves the configuration to the given file path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// the file may carry the JWT secret
	return os.WriteFile(path, data, 0600)
}

// Remote reports whether the app talks to a data service over HTTP.
func (c *Config) Remote() bool {
	return c.ServerURL != ""
}

// Validate checks settings that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
	case BackendFirestore:
		if c.FirestoreProject == "" {
			return errors.New("firestore backend needs PROJECTHUB_FIRESTORE_PROJECT")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendFirestore)
	}
	return nil
}
