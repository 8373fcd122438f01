// AngelaMos | 2026
// repository.go

package order

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Order, error)
}

type repository struct {
	orders *mongo.Collection
}

func NewRepository(db *core.Database) Repository {
	return &repository{orders: db.Collection(core.CollectionOrders)}
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.orders.InsertOne(ctx, o)
	return core.MapMongoError("create order", err)
}

func (r *repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	var o Order
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, core.MapMongoError("get order", err)
	}
	return &o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.orders.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, core.MapMongoError("list orders", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // read-only cursor

	orders := []Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, core.MapMongoError("decode orders", err)
	}
	return orders, nil
}
