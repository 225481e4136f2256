package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read by LoadSecrets.
const (
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvPineconeAPIKey    = "PINECONE_API_KEY"
	EnvPineconeIndexName = "PINECONE_INDEX_NAME"
	EnvVaultPath         = "VAULT_PATH"
)

// ErrMissingSecret is returned by the Require* helpers when a variable is unset.
var ErrMissingSecret = errors.New("missing required environment variable")

// Secrets holds credentials that never live in the JSON config file.
type Secrets struct {
	GeminiAPIKey      string
	PineconeAPIKey    string
	PineconeIndexName string
	VaultPath         string
}

// secretEnvVars are never passed on to child processes.
var secretEnvVars = []string{EnvGeminiAPIKey, EnvPineconeAPIKey, EnvPineconeIndexName}

// LoadSecrets reads the given .env files (if present) and the known
// variables. Variables already set in the environment take precedence over
// the files. The process environment is left untouched, so file values never
// reach child processes.
func LoadSecrets(envFiles ...string) (*Secrets, error) {
	fileVars := map[string]string{}
	for _, f := range envFiles {
		vars, err := godotenv.Read(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
		for k, v := range vars {
			if _, seen := fileVars[k]; !seen {
				fileVars[k] = v
			}
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileVars[key]
	}

	return &Secrets{
		GeminiAPIKey:      lookup(EnvGeminiAPIKey),
		PineconeAPIKey:    lookup(EnvPineconeAPIKey),
		PineconeIndexName: lookup(EnvPineconeIndexName),
		VaultPath:         lookup(EnvVaultPath),
	}, nil
}

// ScrubEnviron returns environ without the credential variables.
func ScrubEnviron(environ []string) []string {
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if !slices.Contains(secretEnvVars, key) {
			out = append(out, kv)
		}
	}
	return out
}

// RequireGemini checks the credentials needed by any Gemini call.
func (s *Secrets) RequireGemini() error {
	if s.GeminiAPIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingSecret, EnvGeminiAPIKey)
	}
	return nil
}

// RequirePinecone checks the credentials needed to reach the vector index.
func (s *Secrets) RequirePinecone() error {
	if err := s.RequireGemini(); err != nil {
		return err
	}
	if s.PineconeAPIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingSecret, EnvPineconeAPIKey)
	}
	if s.PineconeIndexName == "" {
		return fmt.Errorf("%w: %s", ErrMissingSecret, EnvPineconeIndexName)
	}
	return nil
}
