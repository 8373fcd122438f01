// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/bookheaven/internal/address"
	"github.com/carterperez-dev/bookheaven/internal/cart"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/events"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNoAddress = errors.New("no shipping address")
)

type CartReader interface {
	ListItems(ctx context.Context, userID string) (*cart.View, error)
	Clear(ctx context.Context, userID string) error
}

type AddressResolver interface {
	Resolve(ctx context.Context, userID, addressID string) (*address.Address, error)
}

type Service struct {
	repo      Repository
	carts     CartReader
	addresses AddressResolver
	publisher events.Publisher
	metrics   metrics.Recorder
	now       func() time.Time
}

func NewService(
	repo Repository,
	carts CartReader,
	addresses AddressResolver,
	publisher events.Publisher,
	rec metrics.Recorder,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		repo:      repo,
		carts:     carts,
		addresses: addresses,
		publisher: publisher,
		metrics:   rec,
		now:       time.Now,
	}
}

// Place turns the cart into an order at current catalog prices, then
// empties the cart. Clearing and publishing happen after the order is
// stored; their failures are logged and do not fail the checkout.
func (s *Service) Place(ctx context.Context, p *middleware.Principal, addressID string) (*Order, error) {
	ctx, span := core.StartSpan(ctx, "order.place")
	defer span.End()

	if p == nil {
		return nil, core.ErrUnauthorized
	}
	uid, err := core.ParseObjectID(p.UserID)
	if err != nil {
		return nil, err
	}

	view, err := s.carts.ListItems(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(view.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.addresses.Resolve(ctx, p.UserID, addressID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNoAddress
		}
		return nil, fmt.Errorf("resolve address: %w", err)
	}

	o := &Order{
		UserID:          uid,
		Items:           make([]Item, 0, len(view.Lines)),
		ShippingAddress: shippingFrom(addr),
		Status:          StatusProcessing,
		CreatedAt:       s.now().UTC(),
	}
	for _, l := range view.Lines {
		item := Item{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.CurrentPrice,
			Quantity:  l.Quantity,
		}
		if len(l.Product.Images) > 0 {
			item.Image = l.Product.Images[0].URL
		}
		o.Items = append(o.Items, item)
		o.ItemsPrice += l.CurrentPrice * float64(l.Quantity)
	}
	o.ItemsPrice = roundCents(o.ItemsPrice)
	o.TotalPrice = o.ItemsPrice

	if err := s.repo.Create(ctx, o); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}
	s.metrics.RecordOrderPlaced(o.TotalPrice)
	core.AddSpanEvent(ctx, "order.created",
		attribute.String("order.id", o.ID.Hex()),
		attribute.Int("order.items", len(o.Items)),
	)

	if err := s.carts.Clear(ctx, p.UserID); err != nil {
		slog.ErrorContext(ctx, "clear cart after checkout failed",
			"order_id", o.ID.Hex(),
			"user_id", p.UserID,
			"error", err,
		)
	}

	if err := s.publisher.Publish(ctx, events.TypeOrderPlaced, placedEvent(o, p.Email)); err != nil {
		slog.ErrorContext(ctx, "publish order.placed failed",
			"order_id", o.ID.Hex(),
			"error", err,
		)
	}

	return o, nil
}

// Get hides other customers' orders behind core.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}
	oid, err := core.ParseObjectID(orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	o, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o.UserID != uid {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, uid)
}

func shippingFrom(a *address.Address) ShippingAddress {
	return ShippingAddress{
		FullName: a.FullName,
		Phone:    a.Phone,
		Address:  a.Address,
		City:     a.City,
		State:    a.State,
		ZipCode:  a.ZipCode,
	}
}

func placedEvent(o *Order, email string) events.OrderPlaced {
	lines := make([]events.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, events.OrderLine{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return events.OrderPlaced{
		OrderID:       o.ID.Hex(),
		CustomerID:    o.UserID.Hex(),
		Email:         email,
		RecipientName: o.ShippingAddress.FullName,
		Items:         lines,
		TotalPrice:    o.TotalPrice,
		PlacedAt:      o.CreatedAt,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
