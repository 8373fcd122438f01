// AngelaMos | 2026
// repository.go

package address

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Repository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*Book, error)
	Create(ctx context.Context, b *Book) error
	// Save replaces the document only if its version still equals
	// b.Version, then bumps b.Version. A stale copy yields core.ErrConflict.
	Save(ctx context.Context, b *Book) error
}

type repository struct {
	books *mongo.Collection
}

func NewRepository(db *core.Database) Repository {
	return &repository{books: db.Collection(core.CollectionAddresses)}
}

func (r *repository) Get(ctx context.Context, userID primitive.ObjectID) (*Book, error) {
	var b Book
	if err := r.books.FindOne(ctx, bson.M{"userId": userID}).Decode(&b); err != nil {
		return nil, core.MapMongoError("get address book", err)
	}
	return &b, nil
}

func (r *repository) Create(ctx context.Context, b *Book) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Addresses == nil {
		b.Addresses = []Address{}
	}

	_, err := r.books.InsertOne(ctx, b)
	return core.MapMongoError("create address book", err)
}

func (r *repository) Save(ctx context.Context, b *Book) error {
	filter, next := saveQuery(b)

	res, err := r.books.ReplaceOne(ctx, filter, next)
	if err != nil {
		return core.MapMongoError("save address book", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("save address book: %w", core.ErrConflict)
	}

	b.Version = next.Version
	return nil
}

// saveQuery matches the version b was read at and writes the next one.
func saveQuery(b *Book) (bson.M, Book) {
	next := *b
	next.Version = b.Version + 1
	return bson.M{"_id": b.ID, "version": b.Version}, next
}
