// AngelaMos | 2026
// accounts.go

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

var errEmailRequired = errors.New("--email is required")

func NewVerifyEmailCommand(opts *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Mark a customer's email as verified without the emailed link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errEmailRequired
			}
			return withBackend(cmd, opts, func(ctx context.Context, b *Backend) error {
				c, err := b.Customers.MarkVerified(ctx, email)
				if err != nil {
					return describe(err, email)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "verified %s (%s)\n", c.Email, c.ID.Hex())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "customer email")

	return cmd
}

func NewPromoteCommand(opts *RootOptions) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set a customer's role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errEmailRequired
			}
			return withBackend(cmd, opts, func(ctx context.Context, b *Backend) error {
				c, err := b.Customers.SetRole(ctx, email, role)
				if err != nil {
					return describe(err, email)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", c.Email, c.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "customer email")
	cmd.Flags().StringVar(&role, "role", middleware.RoleAdmin, "customer or admin")

	return cmd
}

func describe(err error, email string) error {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return fmt.Errorf("no customer with email %s", email)
	case errors.Is(err, core.ErrInvalidInput):
		return fmt.Errorf("role must be %q or %q", middleware.RoleCustomer, middleware.RoleAdmin)
	default:
		return err
	}
}
