// AngelaMos | 2026
// service.go

package cart

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
)

const MaxLineQuantity = 99

type ProductResolver interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]catalog.Product, error)
}

type Service struct {
	repo     Repository
	products ProductResolver
	metrics  metrics.Recorder
}

func NewService(repo Repository, products ProductResolver, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{repo: repo, products: products, metrics: rec}
}

// Row is one unit of one product, the shape older clients count to get a
// quantity.
type Row struct {
	ID      string          `json:"_id"`
	Product catalog.Product `json:"product"`
	Price   float64         `json:"price"`
}

type LineView struct {
	Product      catalog.Product `json:"product"`
	Quantity     int             `json:"quantity"`
	PriceAtAdd   float64         `json:"priceAtAdd"`
	CurrentPrice float64         `json:"currentPrice"`
	Subtotal     float64         `json:"subtotal"`
}

type View struct {
	CartItems []Row      `json:"cartItems"`
	Lines     []LineView `json:"lines"`
	Length    int        `json:"length"`
	Subtotal  float64    `json:"subtotal"`
}

// AddUnits records count units at the catalog's current price. Prices sent
// by clients are not trusted.
func (s *Service) AddUnits(ctx context.Context, userID, productID string, count int) (int, error) {
	if count < 1 || count > MaxLineQuantity {
		return 0, fmt.Errorf("add units: count %d: %w", count, core.ErrInvalidInput)
	}

	uid, p, err := s.resolve(ctx, userID, productID)
	if err != nil {
		return 0, err
	}

	if err := s.repo.AddUnits(ctx, uid, p.ID, p.Price, count); err != nil {
		return 0, err
	}
	s.metrics.RecordCartOp("add")

	return s.length(ctx, uid)
}

type AddItem struct {
	Product  string `json:"product"  validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

// AddItems groups the submitted rows by product so each product costs one
// write regardless of how many unit rows the client sent. Every product is
// resolved and every total checked before the first write.
func (s *Service) AddItems(ctx context.Context, userID string, items []AddItem) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("add items: empty: %w", core.ErrInvalidInput)
	}

	order := make([]string, 0, len(items))
	counts := make(map[string]int, len(items))
	for _, it := range items {
		n := it.Quantity
		if n == 0 {
			n = 1
		}
		if _, ok := counts[it.Product]; !ok {
			order = append(order, it.Product)
		}
		counts[it.Product] += n
	}

	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return 0, err
	}

	resolved := make([]*catalog.Product, 0, len(order))
	for _, productID := range order {
		if n := counts[productID]; n > MaxLineQuantity {
			return 0, fmt.Errorf("add items: %d units of %s: %w", n, productID, core.ErrInvalidInput)
		}
		p, err := s.products.Get(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("resolve product: %w", err)
		}
		resolved = append(resolved, p)
	}

	for i, p := range resolved {
		if err := s.repo.AddUnits(ctx, uid, p.ID, p.Price, counts[order[i]]); err != nil {
			return 0, err
		}
		s.metrics.RecordCartOp("add")
	}
	return s.length(ctx, uid)
}

func (s *Service) RemoveOneUnit(ctx context.Context, userID, productID string) (int, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return 0, err
	}
	pid, err := core.ParseObjectID(productID)
	if err != nil {
		return 0, fmt.Errorf("remove unit: %w", err)
	}

	if err := s.repo.RemoveOneUnit(ctx, uid, pid); err != nil {
		return 0, err
	}
	s.metrics.RecordCartOp("remove")

	return s.length(ctx, uid)
}

// SetQuantity moves a line straight to quantity; 0 removes it.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 0 || quantity > MaxLineQuantity {
		return nil, fmt.Errorf("set quantity %d: %w", quantity, core.ErrInvalidInput)
	}

	var (
		uid   primitive.ObjectID
		pid   primitive.ObjectID
		price float64
		err   error
	)
	if quantity == 0 {
		if uid, err = core.ParseObjectID(userID); err != nil {
			return nil, err
		}
		if pid, err = core.ParseObjectID(productID); err != nil {
			return nil, fmt.Errorf("set quantity: %w", err)
		}
	} else {
		var p *catalog.Product
		if uid, p, err = s.resolve(ctx, userID, productID); err != nil {
			return nil, err
		}
		pid, price = p.ID, p.Price
	}

	if err := s.repo.SetQuantity(ctx, uid, pid, price, quantity); err != nil {
		return nil, err
	}
	s.metrics.RecordCartOp("set")

	return s.ListItems(ctx, userID)
}

// ListItems resolves every line against the catalog. Lines whose product
// no longer exists are left out.
func (s *Service) ListItems(ctx context.Context, userID string) (*View, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	view := &View{CartItems: []Row{}, Lines: []LineView{}}
	for _, l := range c.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}

		lineTotal := roundCents(p.Price * float64(l.Quantity))
		view.Lines = append(view.Lines, LineView{
			Product:      p,
			Quantity:     l.Quantity,
			PriceAtAdd:   l.Price,
			CurrentPrice: p.Price,
			Subtotal:     lineTotal,
		})
		for i := range l.Quantity {
			view.CartItems = append(view.CartItems, Row{
				ID:      fmt.Sprintf("%s-%d", p.ID.Hex(), i),
				Product: p,
				Price:   l.Price,
			})
		}
		view.Length += l.Quantity
		view.Subtotal += lineTotal
	}
	view.Subtotal = roundCents(view.Subtotal)

	return view, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, uid); err != nil {
		return err
	}
	s.metrics.RecordCartOp("clear")
	return nil
}

func (s *Service) resolve(
	ctx context.Context,
	userID, productID string,
) (primitive.ObjectID, *catalog.Product, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return primitive.NilObjectID, nil, fmt.Errorf("resolve product: %w", err)
	}
	return uid, p, nil
}

func (s *Service) length(ctx context.Context, uid primitive.ObjectID) (int, error) {
	c, err := s.repo.Get(ctx, uid)
	if err != nil {
		return 0, err
	}
	return c.Units(), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
