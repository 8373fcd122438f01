// AngelaMos | 2026
// carts.go

package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/cart"
	"github.com/carterperez-dev/bookheaven/internal/core"
)

// CartStore is an in-memory cart.Repository.
type CartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*cart.Cart
}

var _ cart.Repository = (*CartStore)(nil)

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[primitive.ObjectID]*cart.Cart)}
}

func (s *CartStore) Get(_ context.Context, userID primitive.ObjectID) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return &cart.Cart{UserID: userID}, nil
	}
	out := *c
	out.Lines = append([]cart.Line(nil), c.Lines...)
	return &out, nil
}

func (s *CartStore) AddUnits(
	_ context.Context,
	userID, productID primitive.ObjectID,
	price float64,
	count int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	if i := lineIndex(c, productID); i >= 0 {
		c.Lines[i].Quantity += count
		c.Lines[i].Price = price
		return nil
	}
	c.Lines = append(c.Lines, cart.Line{ProductID: productID, Quantity: count, Price: price, AddedAt: time.Now()})
	return nil
}

func (s *CartStore) RemoveOneUnit(_ context.Context, userID, productID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	i := lineIndex(c, productID)
	if i < 0 {
		return fmt.Errorf("remove unit: %w", core.ErrNotFound)
	}
	if c.Lines[i].Quantity > 1 {
		c.Lines[i].Quantity--
		return nil
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

func (s *CartStore) SetQuantity(
	_ context.Context,
	userID, productID primitive.ObjectID,
	price float64,
	quantity int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	i := lineIndex(c, productID)
	switch {
	case quantity <= 0 && i >= 0:
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	case quantity <= 0:
	case i >= 0:
		c.Lines[i].Quantity, c.Lines[i].Price = quantity, price
	default:
		c.Lines = append(c.Lines, cart.Line{ProductID: productID, Quantity: quantity, Price: price, AddedAt: time.Now()})
	}
	return nil
}

func (s *CartStore) Clear(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[userID]; ok {
		c.Lines = nil
	}
	return nil
}

func (s *CartStore) cart(userID primitive.ObjectID) *cart.Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &cart.Cart{UserID: userID}
		s.carts[userID] = c
	}
	return c
}

func lineIndex(c *cart.Cart, productID primitive.ObjectID) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
