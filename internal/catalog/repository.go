// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Repository interface {
	List(ctx context.Context, category string) ([]Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Product, error)
	// UpsertByName reports whether a new product was inserted.
	UpsertByName(ctx context.Context, p *Product) (bool, error)
}

type repository struct {
	products *mongo.Collection
}

func NewRepository(db *core.Database) Repository {
	return &repository{products: db.Collection(core.CollectionProducts)}
}

func (r *repository) List(ctx context.Context, category string) ([]Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(category) + "$",
			Options: "i",
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, core.MapMongoError("list products", err)
	}

	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var p Product
	if err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, core.MapMongoError("get product", err)
	}
	return &p, nil
}

func (r *repository) GetMany(
	ctx context.Context,
	ids []primitive.ObjectID,
) (map[primitive.ObjectID]Product, error) {
	found := make(map[primitive.ObjectID]Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cur, err := r.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, core.MapMongoError("get products", err)
	}

	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func (r *repository) UpsertByName(ctx context.Context, p *Product) (bool, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	update := bson.M{
		"$set": bson.M{
			"description":   p.Description,
			"author":        p.Author,
			"price":         p.Price,
			"category":      p.Category,
			"stock":         p.Stock,
			"images":        p.Images,
			"shareableLink": p.ShareableLink,
			"featured":      p.Featured,
			"bestseller":    p.Bestseller,
			"newRelease":    p.NewRelease,
		},
		"$setOnInsert": bson.M{"createdAt": p.CreatedAt},
	}

	res, err := r.products.UpdateOne(ctx,
		bson.M{"name": p.Name},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, core.MapMongoError("upsert product", err)
	}
	return res.UpsertedCount > 0, nil
}
