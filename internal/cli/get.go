package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/simp-lee/shopadmin/internal/action"
	"github.com/simp-lee/shopadmin/internal/api"
)

func newGetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Show one record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookup(args[0])
			if err != nil {
				return err
			}
			ctx, err := o.authorized(cmd.Context())
			if err != nil {
				return err
			}

			b := binding(o, e)
			rec, err := action.Run(ctx, o.runner, notifier(cmd), spec(e, action.VerbGet, args[1]),
				func(ctx context.Context) (*api.Record, error) {
					return b.GetByID(ctx, args[1])
				})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newDeleteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookup(args[0])
			if err != nil {
				return err
			}
			ctx, err := o.authorized(cmd.Context())
			if err != nil {
				return err
			}

			b := binding(o, e)
			_, err = action.Run(ctx, o.runner, notifier(cmd), spec(e, action.VerbDelete, args[1]),
				func(ctx context.Context) (struct{}, error) {
					return struct{}{}, b.Delete(ctx, args[1])
				})
			return err
		},
	}
}
