package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/simp-lee/shopadmin/internal/action"
)

const defaultLoginPath = "/auth/login"

var tokenSpec = action.Spec{Resource: "Token", Name: "auth", Verb: action.VerbCreate, Operator: cliOperator}

func newLoginCmd(o *options) *cobra.Command {
	var email, password, path string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print an access token",
		Long: "Sign in with an administrator account and print the access token.\n" +
			"Export it as " + EnvToken + " for the other commands.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			tok, err := action.Run(cmd.Context(), o.runner, notifier(cmd), tokenSpec,
				func(ctx context.Context) (*oauth2.Token, error) {
					return o.client.Login(ctx, path, email, password)
				})
			if err != nil {
				return err
			}
			o.logger.Info("signed in", "email", email)
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password")
	cmd.Flags().StringVar(&path, "path", defaultLoginPath, "backend sign-in path")
	return cmd
}
