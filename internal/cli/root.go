// AngelaMos | 2026
// root.go

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/customer"
)

// Backend is what the data commands operate on.
type Backend struct {
	Catalog   *catalog.Service
	Customers *customer.Service
	Close     func(ctx context.Context) error
}

// Opener connects a Backend from the config file at path.
type Opener func(ctx context.Context, path string) (*Backend, error)

type RootOptions struct {
	ConfigPath string
	Open       Opener
}

func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenMongo
	}
	opts := &RootOptions{Open: open}

	cmd := &cobra.Command{
		Use:           "bookctl",
		Short:         "Book Heaven operator tools",
		Long:          "Key generation, catalog seeding and account maintenance for the Book Heaven API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "path to config file")

	cmd.AddCommand(NewKeygenCommand())
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewVerifyEmailCommand(opts))
	cmd.AddCommand(NewPromoteCommand(opts))

	return cmd
}

// OpenMongo wires the services straight onto MongoDB. Nothing that sends
// mail or issues sessions is reachable from the CLI.
func OpenMongo(ctx context.Context, path string) (*Backend, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		_ = db.Close(ctx) //nolint:errcheck // cleanup on index failure
		return nil, err
	}

	return &Backend{
		Catalog:   catalog.NewService(catalog.NewRepository(db)),
		Customers: customer.NewService(customer.NewRepository(db), nil, nil, cfg.Auth),
		Close:     db.Close,
	}, nil
}

func withBackend(
	cmd *cobra.Command,
	opts *RootOptions,
	fn func(ctx context.Context, b *Backend) error,
) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := opts.Open(ctx, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer func() {
		if b.Close != nil {
			_ = b.Close(context.Background()) //nolint:errcheck // best-effort on exit
		}
	}()

	return fn(ctx, b)
}
