package config

import (
	"fmt"
	"strings"

	"github.com/Jaspreet000/remotify-sub001/internal/auth"
	"github.com/Jaspreet000/remotify-sub001/internal/envconfig"
)

// Config encapsulates the runtime configuration for the progression service.
type Config struct {
	Port         string
	GCPProjectID string
	DataStore    DataStore
	Auth         AuthConfig
	Firestore    FirestoreConfig
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps progression state in-memory (useful for local development/testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores progression state in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     auth.Mode
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	EmulatorHost string
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		Auth: AuthConfig{
			Mode:     auth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(auth.ModeNoop)))),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("port must be specified")
	}

	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when datastore=firestore")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Auth.Mode {
	case auth.ModeClerk:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
		}
	case auth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}
