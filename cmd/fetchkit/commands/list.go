package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fetchkit-io/fetchkit/internal/constants"
	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
	"github.com/fetchkit-io/fetchkit/pkg/fkclient"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var (
		perPage       int
		orderBy       string
		labelSelector string
		all           bool
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "list <path>",
		Short: "List a resource collection",
		Long: `List resources under a collection path with incremental pagination, e.g.:

  fetchkit list v3/apps --per-page 10
  fetchkit list v3/apps --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if perPage < 1 || perPage > constants.MaxPerPage {
				return constants.ErrInvalidPerPage
			}

			client, err := buildClient()
			if err != nil {
				return err
			}

			descriptor := fetchkit.JSONResource[resource]{CollectionPath: args[0]}
			binding := fkclient.BindList[resource](client, descriptor)

			params := fetchkit.NewQueryParams().WithPerPage(perPage)
			if orderBy != "" {
				params = params.WithOrderBy(orderBy)
			}

			if labelSelector != "" {
				params = params.WithLabelSelector(labelSelector)
			}

			items, err := binding.FirstPage(context.Background(), params, force)
			if err != nil {
				return fmt.Errorf("failed to list resources: %w", err)
			}

			for all && binding.HasNextPage() {
				items, _, err = binding.NextPage(context.Background())
				if err != nil {
					return fmt.Errorf("failed to fetch next page: %w", err)
				}
			}

			if err := renderList(items); err != nil {
				return err
			}

			if !all && binding.HasNextPage() {
				fmt.Println("\nMore pages available, use --all to fetch them")
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPerPage, "results per page")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort field, prefix with '-' for descending")
	cmd.Flags().StringVar(&labelSelector, "label-selector", "", "label selector expression")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	cmd.Flags().BoolVar(&force, "force", false, "bypass deduplicated results and refetch")

	return cmd
}
