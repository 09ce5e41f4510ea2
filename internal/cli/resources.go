package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/catalog"
)

func newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the resources adminctl can manage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTITLE\tPATH\tKEY\tFILTERS")
			for _, name := range catalog.Names() {
				e := catalog.MustLookup(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					name, e.Title, e.Endpoint.Path, e.KeyField, strings.Join(e.Filters, ","))
			}
			return w.Flush()
		},
	}
}

// lookup resolves a resource argument.
func lookup(name string) (catalog.Entry, error) {
	e, ok := catalog.Lookup(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return catalog.Entry{}, fmt.Errorf("unknown resource %q (see adminctl resources)", name)
	}
	return e, nil
}

func binding(o *options, e catalog.Entry) *api.Binding[api.Record] {
	return api.NewBinding[api.Record](o.client, e.Endpoint)
}
