// Package config layers brewmap configuration from flags, environment
// variables, an optional .env file and an optional config file, via viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/brewmap/brewmap/pkg/logging"
)

// Configuration keys.
const (
	KeyGeminiAPIKey = "gemini_api_key"
	KeyGeminiModel  = "gemini_model"
	KeyStorePath    = "store_path"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
)

// Init wires viper to the environment and the optional config file. A
// missing config file is not an error; a malformed one is only an advisory.
func Init(configFile string) {
	// .env is a convenience for API keys during development.
	if err := godotenv.Load(); err == nil {
		logging.Debug().Msg("loaded .env file")
	}

	viper.SetEnvPrefix("BREWMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// GEMINI_API_KEY is conventionally unprefixed.
	_ = viper.BindEnv(KeyGeminiAPIKey, "BREWMAP_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".brewmap"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && configFile != "" {
			logging.Warn().Err(err).Str("file", configFile).Msg("could not read config file")
		}
	}
}

// GetString returns a configuration value, checking the raw OS environment
// as a fallback for unprefixed variables.
func GetString(key string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(strings.ToUpper(key))
}

// GeminiAPIKey returns the configured Gemini API key, empty if unset.
func GeminiAPIKey() string {
	return GetString(KeyGeminiAPIKey)
}

// GeminiModel returns the configured model name, empty for the default.
func GeminiModel() string {
	return GetString(KeyGeminiModel)
}

// StorePath returns the configured store path, empty for the default.
func StorePath() string {
	return GetString(KeyStorePath)
}
