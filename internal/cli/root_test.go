// AngelaMos | 2026
// root_test.go

package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/cli"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/customer"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
	"github.com/carterperez-dev/bookheaven/internal/testutil"
)

type fixture struct {
	products  *testutil.CatalogStore
	customers *testutil.CustomerStore
	opened    string
	closed    bool
}

func newFixture() *fixture {
	return &fixture{
		products:  testutil.NewCatalogStore(),
		customers: testutil.NewCustomerStore(),
	}
}

func (f *fixture) open(_ context.Context, path string) (*cli.Backend, error) {
	f.opened = path
	return &cli.Backend{
		Catalog:   catalog.NewService(f.products),
		Customers: customer.NewService(f.customers, nil, nil, config.AuthConfig{}),
		Close: func(context.Context) error {
			f.closed = true
			return nil
		},
	}, nil
}

func run(t *testing.T, f *fixture, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(f.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	cmd := cli.NewRootCommand(nil)

	assert.Equal(t, "bookctl", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	for _, name := range []string{"keygen", "seed", "verify-email", "promote"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	seed, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)
	assert.NotNil(t, seed.Flags().Lookup("file"))

	promote, _, err := cmd.Find([]string{"promote"})
	require.NoError(t, err)
	role := promote.Flags().Lookup("role")
	require.NotNil(t, role)
	assert.Equal(t, middleware.RoleAdmin, role.DefValue)
}

func TestKeygen(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "keys", "private.pem")
	pub := filepath.Join(dir, "keys", "public.pem")

	out, err := run(t, newFixture(), "keygen", "--private", priv, "--public", pub)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	info, err := os.Stat(priv)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(pub)
	require.NoError(t, err)

	_, err = run(t, newFixture(), "keygen", "--private", priv, "--public", pub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = run(t, newFixture(), "keygen", "--private", priv, "--public", pub, "--force")
	require.NoError(t, err)
}

const seedYAML = `products:
  - name: Dune
    author: Frank Herbert
    price: 10
    category: fiction
    stock: 4
    featured: true
    images:
      - public_id: dune
        url: https://img.example/dune.jpg
  - name: Emma
    author: Jane Austen
    price: 5.5
    category: classics
    stock: 2
`

func TestSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	f := newFixture()
	out, err := run(t, f, "--config", "custom.yaml", "seed", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 products (2 new, 0 updated)")
	assert.Equal(t, "custom.yaml", f.opened)
	assert.True(t, f.closed)

	out, err = run(t, f, "seed", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(0 new, 2 updated)")

	all, err := f.products.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	fiction, err := f.products.List(context.Background(), "fiction")
	require.NoError(t, err)
	require.Len(t, fiction, 1)
	assert.Equal(t, "Dune", fiction[0].Name)
	assert.True(t, fiction[0].Featured)
	require.Len(t, fiction[0].Images, 1)
	assert.Equal(t, "dune", fiction[0].Images[0].PublicID)
}

func TestParseSeed(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		_, err := cli.ParseSeed(strings.NewReader("products:\n  - name: Dune\n    prize: 10\n"))
		require.Error(t, err)
	})

	t.Run("images default to empty", func(t *testing.T) {
		products, err := cli.ParseSeed(strings.NewReader("products:\n  - name: Emma\n"))
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.NotNil(t, products[0].Images)
		assert.Empty(t, products[0].Images)
	})
}

func TestSeedRejectsNegativePrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products:\n  - name: Dune\n    price: -1\n"), 0o600))

	_, err := run(t, newFixture(), "seed", "--file", path)
	require.Error(t, err)
}

func TestAccountCommands(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.customers.Create(context.Background(), &customer.Customer{
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  middleware.RoleCustomer,
	}))

	out, err := run(t, f, "verify-email", "--email", "ADA@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "verified ada@example.com")
	assert.True(t, f.customers.Peek("ada@example.com").EmailVerified)

	out, err = run(t, f, "promote", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com is now admin")
	assert.Equal(t, middleware.RoleAdmin, f.customers.Peek("ada@example.com").Role)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"verify missing email", []string{"verify-email"}, "--email is required"},
		{"verify unknown", []string{"verify-email", "--email", "nobody@example.com"}, "no customer"},
		{"promote bad role", []string{"promote", "--email", "ada@example.com", "--role", "root"}, "role must be"},
		{"promote unknown", []string{"promote", "--email", "nobody@example.com"}, "no customer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, f, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
