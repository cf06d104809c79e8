package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fetchkit-io/fetchkit/internal/constants"
	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
	"github.com/fetchkit-io/fetchkit/pkg/fkclient"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		endpoint     string
		tokenURL     string
		username     string
		password     string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against an API endpoint",
		Long:  "Obtain a credential from the token endpoint and store it for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get endpoint
			if endpoint == "" {
				endpoint = viper.GetString("endpoint")
			}

			if endpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				endpoint, _ = reader.ReadString('\n')
				endpoint = strings.TrimSpace(endpoint)
			}

			if endpoint == "" {
				return constants.ErrNoEndpointConfigured
			}

			if tokenURL == "" {
				tokenURL = viper.GetString("token_url")
			}

			config := &fetchkit.Config{
				BaseURL:  endpoint,
				TokenURL: tokenURL,
			}

			// Determine authentication method
			if clientID != "" && clientSecret != "" {
				config.ClientID = clientID
				config.ClientSecret = clientSecret
			} else {
				if username == "" {
					reader := bufio.NewReader(os.Stdin)
					fmt.Print("Username: ")
					username, _ = reader.ReadString('\n')
					username = strings.TrimSpace(username)
				}

				if password == "" {
					fmt.Print("Password: ")

					bytePassword, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read password: %w", err)
					}

					password = string(bytePassword)

					fmt.Println()
				}

				config.Username = username
				config.Password = password
			}

			client, err := fkclient.New(config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			// Verify the credentials by fetching a token now
			token, err := client.Authenticate(context.Background())
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			// Persist endpoint and token (never the password)
			viper.Set("endpoint", client.BaseURL())
			viper.Set("token", token)
			viper.Set("token_url", tokenURL)

			if err := saveConfig(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s\n", client.BaseURL())

			return nil
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "API base URL")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "OAuth2 token endpoint")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for authentication")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard stored credentials",
		Long:  "Clear authentication credentials from the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Clear authentication data
			viper.Set("token", "")
			viper.Set("refresh_token", "")
			viper.Set("username", "")

			if err := saveConfig(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Successfully logged out")

			return nil
		},
	}
}
