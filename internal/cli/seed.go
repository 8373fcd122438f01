// AngelaMos | 2026
// seed.go

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/carterperez-dev/bookheaven/internal/catalog"
)

// SeedFile is the catalog fixture format.
type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
}

type SeedProduct struct {
	Name          string          `yaml:"name"`
	Description   string          `yaml:"description"`
	Author        string          `yaml:"author"`
	Price         float64         `yaml:"price"`
	Category      string          `yaml:"category"`
	Stock         int             `yaml:"stock"`
	Images        []catalog.Image `yaml:"images"`
	ShareableLink string          `yaml:"shareable_link"`
	Featured      bool            `yaml:"featured"`
	Bestseller    bool            `yaml:"bestseller"`
	NewRelease    bool            `yaml:"new_release"`
}

func (p SeedProduct) Product() catalog.Product {
	return catalog.Product{
		Name:          p.Name,
		Description:   p.Description,
		Author:        p.Author,
		Price:         p.Price,
		Category:      p.Category,
		Stock:         p.Stock,
		Images:        p.Images,
		ShareableLink: p.ShareableLink,
		Featured:      p.Featured,
		Bestseller:    p.Bestseller,
		NewRelease:    p.NewRelease,
	}
}

// ParseSeed rejects unknown keys so a typo does not silently seed zeros.
func ParseSeed(r io.Reader) ([]catalog.Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	products := make([]catalog.Product, 0, len(f.Products))
	for _, p := range f.Products {
		if p.Images == nil {
			p.Images = []catalog.Image{}
		}
		products = append(products, p.Product())
	}
	return products, nil
}

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert catalog products by name from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			products, err := ParseSeed(f)
			if err != nil {
				return err
			}

			return withBackend(cmd, opts, func(ctx context.Context, b *Backend) error {
				res, err := b.Catalog.Seed(ctx, products)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products (%d new, %d updated)\n",
					res.Inserted+res.Updated, res.Inserted, res.Updated)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "catalog.yaml", "seed file")

	return cmd
}
