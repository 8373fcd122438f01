// AngelaMos | 2026
// repository.go

package subscription

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Repository interface {
	// Upsert stores the subscription or refreshes isUser on an existing one.
	// created is false when the email was already subscribed.
	Upsert(ctx context.Context, email string, isUser bool, now time.Time) (created bool, err error)
}

type repository struct {
	subs *mongo.Collection
}

func NewRepository(db *core.Database) Repository {
	return &repository{subs: db.Collection(core.CollectionSubscriptions)}
}

func (r *repository) Upsert(ctx context.Context, email string, isUser bool, now time.Time) (bool, error) {
	filter := bson.M{"email": email}
	update := bson.M{
		"$set":         bson.M{"isUser": isUser, "updatedAt": now},
		"$setOnInsert": bson.M{"email": email, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	err := r.subs.FindOneAndUpdate(ctx, filter, update, opts).Err()
	if mongo.IsDuplicateKeyError(err) {
		err = r.subs.FindOneAndUpdate(ctx, filter, update, opts).Err()
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return true, nil
	case err != nil:
		return false, core.MapMongoError("upsert subscription", err)
	default:
		return false, nil
	}
}
