package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
	"github.com/fetchkit-io/fetchkit/pkg/fkclient"
)

// itemResource reads one resource at a fixed path.
type itemResource struct {
	fetchkit.JSONResource[resource]

	path string
}

func (r itemResource) ReadEndpoint(current *resource) (fetchkit.Endpoint, error) {
	return fetchkit.Endpoint{Method: "GET", Path: r.path}, nil
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Fetch a single resource",
		Long: `Fetch one resource by its API path, e.g.:

  fetchkit get v3/apps/585bc3c1-3743-497d-88b0-403ad6b56d16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}

			binding := fkclient.Bind[resource](client, itemResource{path: args[0]})

			value, err := binding.Read(context.Background(), force)
			if err != nil {
				if fetchkit.IsNotFound(err) {
					return fmt.Errorf("resource %s not found: %w", args[0], err)
				}

				return fmt.Errorf("failed to fetch resource: %w", err)
			}

			return renderValue(value)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass deduplicated results and refetch")

	return cmd
}
