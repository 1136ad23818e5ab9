package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	AppName     = "agrosage"
	EnvFileName = "config.env"
)

// Required environment variables without which the app cannot start.
var required = []string{
	"AGROSAGE_API_URL",
	"AGROSAGE_TOKEN_KEY",
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// CheckRequired returns the names of required environment variables that
// are not set.
func CheckRequired() []string {
	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
