package utils

import (
	"os"

	"istishara/config"
)

// IsProduction reports whether the server runs in production mode.
// Falls back to the ENV variable when config has not been loaded yet.
func IsProduction() bool {
	if config.AppConfig.Env != "" {
		return config.AppConfig.Env == "production"
	}
	return os.Getenv("ENV") == "production"
}
