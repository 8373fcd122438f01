// AngelaMos | 2026
// repository.go

package cart

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

// Repository mutates a cart with single-document updates only.
type Repository interface {
	// Get returns an empty cart when the customer has none yet.
	Get(ctx context.Context, userID primitive.ObjectID) (*Cart, error)
	AddUnits(ctx context.Context, userID, productID primitive.ObjectID, price float64, count int) error
	// RemoveOneUnit returns core.ErrNotFound when the product is not in the cart.
	RemoveOneUnit(ctx context.Context, userID, productID primitive.ObjectID) error
	SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, price float64, quantity int) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

const maxWriteAttempts = 3

type repository struct {
	carts *mongo.Collection
}

func NewRepository(db *core.Database) Repository {
	return &repository{carts: db.Collection(core.CollectionCarts)}
}

func (r *repository) Get(ctx context.Context, userID primitive.ObjectID) (*Cart, error) {
	var c Cart
	err := r.carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, core.MapMongoError("get cart", err)
	}

	c.Normalize()
	return &c, nil
}

func (r *repository) AddUnits(
	ctx context.Context,
	userID, productID primitive.ObjectID,
	price float64,
	count int,
) error {
	now := time.Now()

	for range maxWriteAttempts {
		res, err := r.carts.UpdateOne(ctx,
			bson.M{"userId": userID, "lines.product": productID},
			bson.M{
				"$inc": bson.M{"lines.$.quantity": count},
				"$set": bson.M{"lines.$.price": price, "updatedAt": now},
			},
		)
		if err != nil {
			return core.MapMongoError("add units", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		pushed, err := r.pushLine(ctx, userID, Line{
			ProductID: productID,
			Quantity:  count,
			Price:     price,
			AddedAt:   now,
		})
		if err != nil {
			return err
		}
		if pushed {
			return nil
		}
	}

	return fmt.Errorf("add units: %w", core.ErrConflict)
}

func (r *repository) RemoveOneUnit(ctx context.Context, userID, productID primitive.ObjectID) error {
	now := time.Now()

	for range maxWriteAttempts {
		filter, update := decrementUnit(userID, productID, now)
		res, err := r.carts.UpdateOne(ctx, filter, update)
		if err != nil {
			return core.MapMongoError("remove unit", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		filter, update = pullLastUnit(userID, productID, now)
		res, err = r.carts.UpdateOne(ctx, filter, update)
		if err != nil {
			return core.MapMongoError("remove unit", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		n, err := r.carts.CountDocuments(ctx, bson.M{"userId": userID, "lines.product": productID})
		if err != nil {
			return core.MapMongoError("remove unit", err)
		}
		if n == 0 {
			return fmt.Errorf("remove unit: %w", core.ErrNotFound)
		}
	}

	return fmt.Errorf("remove unit: %w", core.ErrConflict)
}

// decrementUnit only matches a line holding more than one unit; the last
// unit goes through pullLastUnit so a line never sits at quantity zero.
func decrementUnit(userID, productID primitive.ObjectID, now time.Time) (filter, update bson.M) {
	return bson.M{
			"userId": userID,
			"lines":  bson.M{"$elemMatch": bson.M{"product": productID, "quantity": bson.M{"$gt": 1}}},
		},
		bson.M{
			"$inc": bson.M{"lines.$.quantity": -1},
			"$set": bson.M{"updatedAt": now},
		}
}

func pullLastUnit(userID, productID primitive.ObjectID, now time.Time) (filter, update bson.M) {
	return bson.M{
			"userId": userID,
			"lines":  bson.M{"$elemMatch": bson.M{"product": productID, "quantity": bson.M{"$lte": 1}}},
		},
		bson.M{
			"$pull": bson.M{"lines": bson.M{"product": productID, "quantity": bson.M{"$lte": 1}}},
			"$set":  bson.M{"updatedAt": now},
		}
}

func (r *repository) SetQuantity(
	ctx context.Context,
	userID, productID primitive.ObjectID,
	price float64,
	quantity int,
) error {
	now := time.Now()

	if quantity <= 0 {
		_, err := r.carts.UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$pull": bson.M{"lines": bson.M{"product": productID}},
				"$set":  bson.M{"updatedAt": now},
			},
		)
		return core.MapMongoError("set quantity", err)
	}

	for range maxWriteAttempts {
		res, err := r.carts.UpdateOne(ctx,
			bson.M{"userId": userID, "lines.product": productID},
			bson.M{"$set": bson.M{
				"lines.$.quantity": quantity,
				"lines.$.price":    price,
				"updatedAt":        now,
			}},
		)
		if err != nil {
			return core.MapMongoError("set quantity", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		pushed, err := r.pushLine(ctx, userID, Line{
			ProductID: productID,
			Quantity:  quantity,
			Price:     price,
			AddedAt:   now,
		})
		if err != nil {
			return err
		}
		if pushed {
			return nil
		}
	}

	return fmt.Errorf("set quantity: %w", core.ErrConflict)
}

func (r *repository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.carts.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"lines": []Line{}, "updatedAt": time.Now()}},
	)
	return core.MapMongoError("clear cart", err)
}

// pushLine appends a line unless one for the product appeared meanwhile,
// creating the cart on first use. false means the caller should retry the
// in-place update.
func (r *repository) pushLine(ctx context.Context, userID primitive.ObjectID, line Line) (bool, error) {
	res, err := r.carts.UpdateOne(ctx,
		bson.M{"userId": userID, "lines.product": bson.M{"$ne": line.ProductID}},
		bson.M{
			"$push": bson.M{"lines": line},
			"$set":  bson.M{"updatedAt": line.AddedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, core.MapMongoError("push cart line", err)
	}
	return res.MatchedCount > 0 || res.UpsertedCount > 0, nil
}
