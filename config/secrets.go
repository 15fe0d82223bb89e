package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// SecretsPaths are searched in order; the first existing file wins.
var SecretsPaths = []string{"secrets.toml", "config/secrets.toml"}

// Secrets holds the collaborator API keys. Environment variables of the same
// name take precedence over the file.
type Secrets struct {
	AmapAPIKey     string `toml:"AMAP_API_KEY"`
	DeepSeekAPIKey string `toml:"DEEPSEEK_API_KEY"`
	GeminiAPIKey   string `toml:"GOOGLE_GEMINI_API_KEY"`
	// Source is the file the secrets were read from, empty when none existed.
	Source string `toml:"-"`
}

// LoadSecrets reads the first secrets file found among paths and overlays the
// environment. A missing file is not an error; a malformed one is.
func LoadSecrets(paths ...string) (Secrets, error) {
	var s Secrets
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Secrets{}, fmt.Errorf("reading secrets %s: %w", p, err)
		}
		if err := toml.Unmarshal(data, &s); err != nil {
			return Secrets{}, fmt.Errorf("parsing secrets %s: %w", p, err)
		}
		s.Source = p
		break
	}

	overlay(&s.AmapAPIKey, "AMAP_API_KEY")
	overlay(&s.DeepSeekAPIKey, "DEEPSEEK_API_KEY")
	overlay(&s.GeminiAPIKey, "GOOGLE_GEMINI_API_KEY")
	return s, nil
}

func overlay(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// ChatKey returns the key matching the chat provider.
func (s Secrets) ChatKey(provider string) string {
	if provider == "gemini" {
		return s.GeminiAPIKey
	}
	return s.DeepSeekAPIKey
}

// Masked shows the first and last four characters of a key, the way the key
// check command prints it.
func Masked(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
