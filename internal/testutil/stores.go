// AngelaMos | 2026
// stores.go

package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/address"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/order"
	"github.com/carterperez-dev/bookheaven/internal/subscription"
	"github.com/carterperez-dev/bookheaven/internal/wishlist"
)

// AddressStore is an in-memory address.Repository. Set Conflicts to make
// that many upcoming saves fail as if another writer got there first.
type AddressStore struct {
	mu        sync.Mutex
	books     map[primitive.ObjectID]address.Book
	Conflicts int
	Saves     int
}

var _ address.Repository = (*AddressStore)(nil)

func NewAddressStore() *AddressStore {
	return &AddressStore{books: make(map[primitive.ObjectID]address.Book)}
}

func (s *AddressStore) Get(_ context.Context, userID primitive.ObjectID) (*address.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[userID]
	if !ok {
		return nil, fmt.Errorf("get address book: %w", core.ErrNotFound)
	}
	b.Addresses = slices.Clone(b.Addresses)
	return &b, nil
}

func (s *AddressStore) Create(_ context.Context, b *address.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[b.UserID]; ok {
		return fmt.Errorf("create address book: %w", core.ErrDuplicateKey)
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	stored := *b
	stored.Addresses = slices.Clone(b.Addresses)
	s.books[b.UserID] = stored
	return nil
}

func (s *AddressStore) Save(_ context.Context, b *address.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Saves++
	current, ok := s.books[b.UserID]
	if !ok || current.Version != b.Version || s.Conflicts > 0 {
		if s.Conflicts > 0 {
			s.Conflicts--
		}
		return fmt.Errorf("save address book: %w", core.ErrConflict)
	}

	stored := *b
	stored.Version++
	stored.Addresses = slices.Clone(b.Addresses)
	s.books[b.UserID] = stored
	b.Version = stored.Version
	return nil
}

// WishlistStore is an in-memory wishlist.Repository.
type WishlistStore struct {
	mu    sync.Mutex
	lists map[primitive.ObjectID][]primitive.ObjectID
}

var _ wishlist.Repository = (*WishlistStore)(nil)

func NewWishlistStore() *WishlistStore {
	return &WishlistStore{lists: make(map[primitive.ObjectID][]primitive.ObjectID)}
}

func (s *WishlistStore) Get(_ context.Context, userID primitive.ObjectID) (*wishlist.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := slices.Clone(s.lists[userID])
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return &wishlist.Wishlist{UserID: userID, Products: ids}, nil
}

func (s *WishlistStore) Add(_ context.Context, userID, productID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.lists[userID], productID) {
		s.lists[userID] = append(s.lists[userID], productID)
	}
	return nil
}

func (s *WishlistStore) Remove(_ context.Context, userID, productID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.lists[userID], productID)
	if i < 0 {
		return fmt.Errorf("remove from wishlist: %w", core.ErrNotFound)
	}
	s.lists[userID] = slices.Delete(s.lists[userID], i, i+1)
	return nil
}

// SubscriptionStore is an in-memory subscription.Repository.
type SubscriptionStore struct {
	mu   sync.Mutex
	subs map[string]subscription.Subscription
}

var _ subscription.Repository = (*SubscriptionStore)(nil)

func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{subs: make(map[string]subscription.Subscription)}
}

func (s *SubscriptionStore) Upsert(_ context.Context, email string, isUser bool, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.subs[email]
	if ok {
		existing.IsUser, existing.UpdatedAt = isUser, now
		s.subs[email] = existing
		return false, nil
	}
	s.subs[email] = subscription.Subscription{
		ID:        primitive.NewObjectID(),
		Email:     email,
		IsUser:    isUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true, nil
}

func (s *SubscriptionStore) Lookup(email string) (subscription.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[email]
	return sub, ok
}

// OrderStore is an in-memory order.Repository.
type OrderStore struct {
	mu     sync.Mutex
	orders []order.Order
}

var _ order.Repository = (*OrderStore)(nil)

func NewOrderStore() *OrderStore {
	return &OrderStore{}
}

func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.orders = append(s.orders, *o)
	return nil
}

func (s *OrderStore) GetByID(_ context.Context, id primitive.ObjectID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
}

func (s *OrderStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []order.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
