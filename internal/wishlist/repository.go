// AngelaMos | 2026
// repository.go

package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Repository interface {
	// Get returns an empty wishlist when the user has none yet.
	Get(ctx context.Context, userID primitive.ObjectID) (*Wishlist, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) error
	// Remove reports core.ErrNotFound when the product was not listed.
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
}

type repository struct {
	lists *mongo.Collection
}

func NewRepository(db *core.Database) Repository {
	return &repository{lists: db.Collection(core.CollectionWishlists)}
}

func (r *repository) Get(ctx context.Context, userID primitive.ObjectID) (*Wishlist, error) {
	var w Wishlist
	err := r.lists.FindOne(ctx, bson.M{"userId": userID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Wishlist{UserID: userID, Products: []primitive.ObjectID{}}, nil
	}
	if err != nil {
		return nil, core.MapMongoError("get wishlist", err)
	}
	if w.Products == nil {
		w.Products = []primitive.ObjectID{}
	}
	return &w, nil
}

func (r *repository) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := r.lists.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$addToSet": bson.M{"products": productID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		// lost the upsert race; the document exists now
		_, err = r.lists.UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$addToSet": bson.M{"products": productID},
				"$set":      bson.M{"updatedAt": time.Now().UTC()},
			},
		)
	}
	return core.MapMongoError("add to wishlist", err)
}

func (r *repository) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := r.lists.UpdateOne(ctx,
		bson.M{"userId": userID, "products": productID},
		bson.M{
			"$pull": bson.M{"products": productID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return core.MapMongoError("remove from wishlist", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("remove from wishlist: %w", core.ErrNotFound)
	}
	return nil
}
