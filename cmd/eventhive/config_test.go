package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("set default option", func(t *testing.T) {
		c := NewConfig()

		require.Equal(t, "https://api.eventhive.app", c.APIAddr, "default API address not set")
		require.Equal(t, "info", c.LogLevel, "default log level not set")
		require.Equal(t, "prod", c.Environment, "default environment not set")
		require.Equal(t, "", c.SessionDir, "session dir should be empty by default")
		require.Equal(t, "", c.Passphrase, "passphrase should be empty by default")
	})

	t.Run("load env", func(t *testing.T) {
		c := NewConfig()
		getenv := func(key string) string {
			switch key {
			case "EVENTHIVE_API_ADDRESS":
				return "https://staging.eventhive.app"
			case "EVENTHIVE_SESSION_DIR":
				return "/tmp/eventhive"
			case "EVENTHIVE_PASSPHRASE":
				return "hunter2hunter2"
			case "LOG_LEVEL":
				return "debug"
			case "ENVIRONMENT":
				return "dev"
			default:
				return ""
			}
		}

		c.LoadEnv(getenv)

		require.Equal(t, "https://staging.eventhive.app", c.APIAddr)
		require.Equal(t, "/tmp/eventhive", c.SessionDir)
		require.Equal(t, "hunter2hunter2", c.Passphrase)
		require.Equal(t, "debug", c.LogLevel)
		require.Equal(t, "dev", c.Environment)
	})

	t.Run("empty env keeps previous values", func(t *testing.T) {
		c := NewConfig()
		c.SessionDir = "/tmp/custom"

		c.LoadEnv(func(string) string { return "" })

		require.Equal(t, "https://api.eventhive.app", c.APIAddr)
		require.Equal(t, "/tmp/custom", c.SessionDir)
	})

	t.Run("parse flags", func(t *testing.T) {
		t.Run("valid flags", func(t *testing.T) {
			tests := []struct {
				name  string
				flags []string
			}{
				{
					name: "short",
					flags: []string{
						"-a", "https://staging.eventhive.app",
						"-d", "/tmp/eventhive",
						"-p", "hunter2hunter2",
						"-l", "debug",
						"-e", "dev",
					},
				},
				{
					name: "long",
					flags: []string{
						"--address", "https://staging.eventhive.app",
						"--session-dir", "/tmp/eventhive",
						"--passphrase", "hunter2hunter2",
						"--log-level", "debug",
						"--environment", "dev",
					},
				},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					c := NewConfig()

					err := c.ParseFlags(tt.flags)

					require.NoError(t, err, "correct flags must parse without error")
					require.Equal(t, "https://staging.eventhive.app", c.APIAddr)
					require.Equal(t, "/tmp/eventhive", c.SessionDir)
					require.Equal(t, "hunter2hunter2", c.Passphrase)
					require.Equal(t, "debug", c.LogLevel)
					require.Equal(t, "dev", c.Environment)
				})
			}
		})

		t.Run("invalid flags", func(t *testing.T) {
			c := NewConfig()

			err := c.ParseFlags([]string{
				"--invalid-flag", "value",
			})

			require.Error(t, err, "invalid flag should return an error")
		})
	})
}
