package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

// configKeys are the keys the CLI exposes for editing.
var configKeys = map[string]string{
	"endpoint":      "API base URL",
	"token":         "authentication token",
	"refresh_token": "OAuth2 refresh token",
	"token_url":     "OAuth2 token endpoint",
	"client_id":     "OAuth2 client ID",
	"client_secret": "OAuth2 client secret",
	"output":        "output format (table, json, yaml)",
	"cache.type":    "response cache backend (memory, nats, none)",
	"cache.bucket":  "NATS KV bucket name",
}

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Get and set persistent configuration values",
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigListCommand())

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if _, ok := configKeys[key]; !ok {
				return fmt.Errorf("%w: %s", fetchkit.ErrUnknownConfigKey, key)
			}

			fmt.Println(viper.GetString(key))

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if _, ok := configKeys[key]; !ok {
				return fmt.Errorf("%w: %s", fetchkit.ErrUnknownConfigKey, key)
			}

			viper.Set(key, value)

			if err := saveConfig(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Clear one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if _, ok := configKeys[key]; !ok {
				return fmt.Errorf("%w: %s", fetchkit.ErrUnknownConfigKey, key)
			}

			viper.Set(key, "")

			if err := saveConfig(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Unset %s\n", key)

			return nil
		},
	}
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(resource, len(configKeys))
			for key := range configKeys {
				if key == "client_secret" || key == "token" || key == "refresh_token" {
					if viper.GetString(key) != "" {
						values[key] = "(set)"
					}

					continue
				}

				values[key] = viper.GetString(key)
			}

			return renderValue(values)
		},
	}
}
