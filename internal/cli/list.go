package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/domain"
)

func newListCmd(o *options) *cobra.Command {
	var (
		page     int
		pageSize int
		filters  []string
	)

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List one page of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookup(args[0])
			if err != nil {
				return err
			}
			filter, err := parseFilters(filters, e.Filters)
			if err != nil {
				return err
			}
			ctx, err := o.authorized(cmd.Context())
			if err != nil {
				return err
			}

			b := binding(o, e)
			req := domain.PageRequest{Page: page, PageSize: pageSize, Filter: filter}
			result, err := action.Run(ctx, o.runner, notifier(cmd), spec(e, action.VerbFetch, ""),
				func(ctx context.Context) (*domain.Page[api.Record], error) {
					return b.List(ctx, req)
				})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Items) == 0 {
				fmt.Fprintf(out, "No %s found.\n", strings.ToLower(e.Title))
				return nil
			}
			if err := printRecords(out, result.Items, e.KeyField); err != nil {
				return err
			}
			fmt.Fprintf(out, "\npage %d of %d, %d total\n", result.PageNumber, result.TotalPages, result.TotalCount)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "records per page")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as key=value (repeatable)")
	return cmd
}

// parseFilters turns key=value pairs into a filter map. Only keys the
// backend accepts for the resource are allowed.
func parseFilters(pairs, allowed []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q: want key=value", p)
		}
		if !slices.Contains(allowed, k) {
			if len(allowed) == 0 {
				return nil, fmt.Errorf("filter %q: this resource has no filters", k)
			}
			return nil, fmt.Errorf("filter %q: allowed filters are %s", k, strings.Join(allowed, ", "))
		}
		filter[k] = strings.TrimSpace(v)
	}
	return filter, nil
}
