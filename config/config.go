package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// EnvPrefix namespaces environment overrides, e.g. SG_WEATHER_CITY.
const EnvPrefix = "SG"

type Config struct {
	Mode string `mapstructure:"mode"`
	Data struct {
		BaseDir string `mapstructure:"baseDir"`
	} `mapstructure:"data"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
		GenerateLimit  int           `mapstructure:"generateLimit"`
	} `mapstructure:"server"`
	Weather struct {
		BaseURL     string        `mapstructure:"baseURL"`
		City        string        `mapstructure:"city"`
		Timeout     time.Duration `mapstructure:"timeout"`
		MaxAttempts int           `mapstructure:"maxAttempts"`
		BaseBackoff time.Duration `mapstructure:"baseBackoff"`
		MaxBackoff  time.Duration `mapstructure:"maxBackoff"`
		CacheTTL    time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"weather"`
	Chat struct {
		Provider          string        `mapstructure:"provider"`
		Model             string        `mapstructure:"model"`
		BaseURL           string        `mapstructure:"baseURL"`
		Temperature       float32       `mapstructure:"temperature"`
		MaxTokens         int           `mapstructure:"maxTokens"`
		Timeout           time.Duration `mapstructure:"timeout"`
		MaxAttempts       int           `mapstructure:"maxAttempts"`
		BaseBackoff       time.Duration `mapstructure:"baseBackoff"`
		RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	} `mapstructure:"chat"`
	Prompt struct {
		Language    string `mapstructure:"language"`
		MinCooling  int    `mapstructure:"minCoolingIndex"`
		TemplateDir string `mapstructure:"templateDir"`
	} `mapstructure:"prompt"`

	Secrets Secrets `mapstructure:"-"`
}

// InitConfig reads config.yml from the usual locations, falling back to the
// embedded defaults, then applies SG_ environment overrides and loads secrets.
func InitConfig() (Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	// Embedded defaults first so a partial file only overrides what it names.
	if err := v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
		return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	secrets, err := LoadSecrets(SecretsPaths...)
	if err != nil {
		return Config{}, err
	}
	cfg.Secrets = secrets
	return cfg, nil
}
