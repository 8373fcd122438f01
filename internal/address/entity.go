// AngelaMos | 2026
// entity.go

package address

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Address struct {
	ID        primitive.ObjectID `bson:"_id"       json:"_id"`
	FullName  string             `bson:"fullName"  json:"fullName"`
	Phone     string             `bson:"phone"     json:"phone"`
	Address   string             `bson:"address"   json:"address"`
	City      string             `bson:"city"      json:"city"`
	State     string             `bson:"state"     json:"state"`
	ZipCode   string             `bson:"zipCode"   json:"zipCode"`
	IsDefault bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Book is the per-customer address document. Version guards whole-array
// replacements.
type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Addresses []Address          `bson:"addresses"`
	Version   int64              `bson:"version"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type Input struct {
	FullName  string `json:"fullName"  validate:"required,max=100"`
	Phone     string `json:"phone"     validate:"required,max=30"`
	Address   string `json:"address"   validate:"required,max=200"`
	City      string `json:"city"      validate:"required,max=100"`
	State     string `json:"state"     validate:"required,max=100"`
	ZipCode   string `json:"zipCode"   validate:"required,max=20"`
	IsDefault bool   `json:"isDefault"`
}

// Patch leaves nil fields untouched.
type Patch struct {
	FullName  *string `json:"fullName"  validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone"     validate:"omitempty,min=1,max=30"`
	Address   *string `json:"address"   validate:"omitempty,min=1,max=200"`
	City      *string `json:"city"      validate:"omitempty,min=1,max=100"`
	State     *string `json:"state"     validate:"omitempty,min=1,max=100"`
	ZipCode   *string `json:"zipCode"   validate:"omitempty,min=1,max=20"`
	IsDefault *bool   `json:"isDefault"`
}

// Add appends an address. The first address, or one flagged default,
// becomes the only default.
func (b *Book) Add(in Input, now time.Time) Address {
	a := Address{
		ID:        primitive.NewObjectID(),
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		ZipCode:   strings.TrimSpace(in.ZipCode),
		IsDefault: in.IsDefault || len(b.Addresses) == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.IsDefault {
		b.clearDefault(now)
	}
	b.Addresses = append(b.Addresses, a)
	return a
}

func (b *Book) Update(id primitive.ObjectID, p Patch, now time.Time) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("update address: %w", core.ErrNotFound)
	}

	a := &b.Addresses[i]
	setTrimmed(&a.FullName, p.FullName)
	setTrimmed(&a.Phone, p.Phone)
	setTrimmed(&a.Address, p.Address)
	setTrimmed(&a.City, p.City)
	setTrimmed(&a.State, p.State)
	setTrimmed(&a.ZipCode, p.ZipCode)
	a.UpdatedAt = now

	if p.IsDefault != nil {
		if *p.IsDefault {
			b.clearDefault(now)
		}
		a.IsDefault = *p.IsDefault
	}
	return nil
}

func (b *Book) SetDefault(id primitive.ObjectID, now time.Time) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("set default address: %w", core.ErrNotFound)
	}

	b.clearDefault(now)
	b.Addresses[i].IsDefault = true
	b.Addresses[i].UpdatedAt = now
	return nil
}

// Remove deletes an address. Removing the default promotes whatever is now
// first in stored order.
func (b *Book) Remove(id primitive.ObjectID, now time.Time) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("remove address: %w", core.ErrNotFound)
	}

	wasDefault := b.Addresses[i].IsDefault
	b.Addresses = append(b.Addresses[:i], b.Addresses[i+1:]...)

	if wasDefault && len(b.Addresses) > 0 {
		b.Addresses[0].IsDefault = true
		b.Addresses[0].UpdatedAt = now
	}
	return nil
}

func (b *Book) Find(id primitive.ObjectID) (*Address, bool) {
	i := b.index(id)
	if i < 0 {
		return nil, false
	}
	return &b.Addresses[i], true
}

func (b *Book) Default() (*Address, bool) {
	for i := range b.Addresses {
		if b.Addresses[i].IsDefault {
			return &b.Addresses[i], true
		}
	}
	return nil, false
}

func (b *Book) index(id primitive.ObjectID) int {
	for i := range b.Addresses {
		if b.Addresses[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Book) clearDefault(now time.Time) {
	for i := range b.Addresses {
		if b.Addresses[i].IsDefault {
			b.Addresses[i].IsDefault = false
			b.Addresses[i].UpdatedAt = now
		}
	}
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
