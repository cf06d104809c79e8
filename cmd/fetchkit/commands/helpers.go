package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fetchkit-io/fetchkit/internal/constants"
	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
	"github.com/fetchkit-io/fetchkit/pkg/fkclient"
)

// resource is the generic wire shape the CLI works with.
type resource = map[string]interface{}

// logrusLogger adapts a logrus logger to the engine's Logger interface.
type logrusLogger struct {
	logger *logrus.Logger
}

func newCLILogger() *logrusLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if viper.GetBool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	return &logrusLogger{logger: logger}
}

func (l *logrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Error(msg)
}

// configFromViper assembles the engine configuration from flags, environment
// and the config file.
func configFromViper() (*fetchkit.Config, error) {
	endpoint := viper.GetString("endpoint")
	if endpoint == "" {
		return nil, constants.ErrNoEndpointConfigured
	}

	config := &fetchkit.Config{
		BaseURL:      endpoint,
		AccessToken:  viper.GetString("token"),
		RefreshToken: viper.GetString("refresh_token"),
		TokenURL:     viper.GetString("token_url"),
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		Debug:        viper.GetBool("verbose"),
		Logger:       newCLILogger(),
		OnRefreshFailure: func(err error) {
			fmt.Fprintf(os.Stderr, "Warning: credential refresh failed, run 'fetchkit login' again: %v\n", err)
		},
	}

	config.Cache = cacheConfigFromViper()

	return config, nil
}

// cacheConfigFromViper builds the response-cache configuration, defaulting to
// an in-process memory cache.
func cacheConfigFromViper() *fetchkit.CacheConfig {
	switch viper.GetString("cache.type") {
	case "none":
		return nil
	case "nats":
		return &fetchkit.CacheConfig{
			Type: fetchkit.CacheTypeNATS,
			NATS: &fetchkit.NATSKVConfig{
				URLs:      viper.GetStringSlice("cache.urls"),
				Bucket:    viper.GetString("cache.bucket"),
				TTL:       constants.DefaultCacheTTL,
				CredsFile: viper.GetString("cache.creds_file"),
			},
		}
	default:
		return &fetchkit.CacheConfig{
			Type:   fetchkit.CacheTypeMemory,
			Memory: &fetchkit.MemoryCacheConfig{MaxSize: constants.DefaultCacheSize},
		}
	}
}

func buildClient() (*fkclient.Client, error) {
	config, err := configFromViper()
	if err != nil {
		return nil, err
	}

	client, err := fkclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// saveConfig writes the current viper state back to the config file.
func saveConfig() error {
	err := viper.WriteConfig()
	if err != nil {
		// No config file yet, create one in the default location.
		return viper.SafeWriteConfig()
	}

	return nil
}

// renderValue writes a single resource in the configured output format.
func renderValue(value resource) error {
	switch viper.GetString("output") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(value)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		for _, key := range sortedKeys(value) {
			_ = table.Append(key, formatCell(value[key]))
		}

		return table.Render()
	}
}

// renderList writes a list of resources in the configured output format.
func renderList(items []resource) error {
	switch viper.GetString("output") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(items)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(items)
	default:
		if len(items) == 0 {
			fmt.Println("No resources found")

			return nil
		}

		columns := sortedKeys(items[0])

		table := tablewriter.NewWriter(os.Stdout)
		table.Header(columns)

		for _, item := range items {
			row := make([]string, len(columns))
			for i, column := range columns {
				row[i] = formatCell(item[column])
			}

			_ = table.Append(row)
		}

		return table.Render()
	}
}

func sortedKeys(value resource) []string {
	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

const maxCellWidth = 80

func formatCell(value interface{}) string {
	if value == nil {
		return ""
	}

	cell := fmt.Sprintf("%v", value)
	if len(cell) > maxCellWidth {
		cell = cell[:maxCellWidth-3] + "..."
	}

	return cell
}
