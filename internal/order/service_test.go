// AngelaMos | 2026
// service_test.go

package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/address"
	"github.com/carterperez-dev/bookheaven/internal/cart"
	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/events"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
	"github.com/carterperez-dev/bookheaven/internal/order"
	"github.com/carterperez-dev/bookheaven/internal/testutil"
)

type fixture struct {
	svc       *order.Service
	carts     *cart.Service
	addresses *address.Service
	publisher *testutil.Publisher
	metrics   *testutil.Metrics
	principal *middleware.Principal
	dune      catalog.Product
	emma      catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := testutil.NewCatalogStore()
	f := &fixture{
		publisher: &testutil.Publisher{},
		metrics:   &testutil.Metrics{},
		principal: &middleware.Principal{
			UserID: primitive.NewObjectID().Hex(),
			Email:  "ada@example.com",
			Role:   middleware.RoleCustomer,
		},
		dune: products.Put(catalog.Product{
			Name:   "Dune",
			Price:  10,
			Images: []catalog.Image{{PublicID: "dune", URL: "https://img.example.com/dune.jpg"}},
		}),
		emma: products.Put(catalog.Product{Name: "Emma", Price: 5.5}),
	}
	f.carts = cart.NewService(testutil.NewCartStore(), catalog.NewService(products), nil)
	f.addresses = address.NewService(testutil.NewAddressStore())
	f.svc = order.NewService(testutil.NewOrderStore(), f.carts, f.addresses, f.publisher, f.metrics)
	return f
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.carts.AddUnits(ctx, f.principal.UserID, f.dune.ID.Hex(), 2)
	require.NoError(t, err)
	_, err = f.carts.AddUnits(ctx, f.principal.UserID, f.emma.ID.Hex(), 1)
	require.NoError(t, err)
}

func (f *fixture) addAddress(t *testing.T, name string) string {
	t.Helper()

	list, err := f.addresses.Add(context.Background(), f.principal.UserID, address.Input{
		FullName: name,
		Phone:    "555-0100",
		Address:  "12 Crescent Rd",
		City:     "London",
		State:    "LDN",
		ZipCode:  "N1",
	})
	require.NoError(t, err)
	return list[len(list)-1].ID.Hex()
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t)
	f.addAddress(t, "Ada Lovelace")

	o, err := f.svc.Place(ctx, f.principal, "")
	require.NoError(t, err)

	assert.False(t, o.ID.IsZero())
	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.Equal(t, "Ada Lovelace", o.ShippingAddress.FullName)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "https://img.example.com/dune.jpg", o.Items[0].Image)
	assert.InDelta(t, 25.5, o.ItemsPrice, 0.001)
	assert.InDelta(t, 25.5, o.TotalPrice, 0.001)

	view, err := f.carts.ListItems(ctx, f.principal.UserID)
	require.NoError(t, err)
	assert.Zero(t, view.Length)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.TypeOrderPlaced, f.publisher.Events[0].Type)
	placed, ok := f.publisher.Events[0].Payload.(events.OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", placed.Email)
	assert.Equal(t, o.ID.Hex(), placed.OrderID)

	assert.Equal(t, []float64{25.5}, f.metrics.OrderTotals)
}

func TestPlaceUsesChosenAddress(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.addAddress(t, "Home")
	work := f.addAddress(t, "Office")

	o, err := f.svc.Place(context.Background(), f.principal, work)
	require.NoError(t, err)
	assert.Equal(t, "Office", o.ShippingAddress.FullName)
}

func TestPlaceEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.addAddress(t, "Home")

	_, err := f.svc.Place(context.Background(), f.principal, "")
	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Empty(t, f.publisher.Events)
}

func TestPlaceWithoutAddress(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	_, err := f.svc.Place(context.Background(), f.principal, "")
	assert.ErrorIs(t, err, order.ErrNoAddress)

	view, err := f.carts.ListItems(context.Background(), f.principal.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Length)
}

func TestPlaceSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.addAddress(t, "Home")
	f.publisher.Err = errors.New("broker down")

	o, err := f.svc.Place(context.Background(), f.principal, "")
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestPlaceRequiresPrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Place(context.Background(), nil, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestGetIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t)
	f.addAddress(t, "Home")

	o, err := f.svc.Place(ctx, f.principal, "")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.principal.UserID, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.Get(ctx, primitive.NewObjectID().Hex(), o.ID.Hex())
	assert.ErrorIs(t, err, core.ErrNotFound)

	mine, err := f.svc.ListMine(ctx, f.principal.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestOrderRoutes(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	r.Route("/order", func(r chi.Router) {
		order.NewHandler(f.svc).RegisterRoutes(r, testutil.SignedIn(f.principal))
	})

	do := func(method, path, body string) (*httptest.ResponseRecorder, core.Response) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		var resp core.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec, resp
	}

	rec, resp := do(http.MethodPost, "/order/new", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, order.CodeEmptyCart, resp.Error.Code)

	f.fillCart(t)
	rec, resp = do(http.MethodPost, "/order/new", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, order.CodeNoAddress, resp.Error.Code)

	rec, _ = do(http.MethodPost, "/order/new", `{"addressId":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.addAddress(t, "Home")
	rec, _ = do(http.MethodPost, "/order/new", "{}")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, resp = do(http.MethodGet, "/order/orders/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, data["count"])

	rec, _ = do(http.MethodGet, "/order/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
