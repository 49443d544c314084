package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/campus/internal/authz"
)

func newTokenCmd(o *rootOptions) *cobra.Command {
	var (
		subject string
		roles   []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the record API",
		Example: "  campus token --subject admin@ucsb.edu --role admin\n" +
			"  campus token --subject student@ucsb.edu --role user",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return userError(errors.New("--subject is required"))
			}
			for _, role := range roles {
				if _, ok := authz.ParseRole(role); !ok {
					return userError(fmt.Errorf("unknown role %q (valid: user, admin)", role))
				}
			}

			tokens, err := o.tokens()
			if err != nil {
				return err
			}
			token, err := tokens.Issue(subject, roles)
			if err != nil {
				return sysError(err)
			}

			if o.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"token": token}, false)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually an email address")
	cmd.Flags().StringArrayVar(&roles, "role", nil, "role granted by the token (user or admin); repeatable")
	return cmd
}
