package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/eventhive/eventhive-go/internal/logger"
)

const (
	defaultAPIAddr      = "https://api.eventhive.app"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
)

type Config struct {
	// Default logging level
	LogLevel string

	// Base URL of the EventHive auth API
	APIAddr string

	// Directory the session file lives in. Empty means the per user
	// config directory.
	SessionDir string

	// Passphrase sealing the session file. Empty means plain storage.
	Passphrase string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		APIAddr:     defaultAPIAddr,
		Environment: defaultEnvironment,
	}
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"EVENTHIVE_API_ADDRESS": setString(&c.APIAddr),
		"EVENTHIVE_SESSION_DIR": setString(&c.SessionDir),
		"EVENTHIVE_PASSPHRASE":  setString(&c.Passphrase),
		"LOG_LEVEL":             setString(&c.LogLevel),
		"ENVIRONMENT":           setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("eventhive", pflag.ContinueOnError)

	fs.StringVarP(&c.APIAddr, "address", "a", c.APIAddr, "EventHive API base URL")
	fs.StringVarP(&c.SessionDir, "session-dir", "d", c.SessionDir, "Session file directory")
	fs.StringVarP(&c.Passphrase, "passphrase", "p", c.Passphrase, "Passphrase sealing the session file")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
