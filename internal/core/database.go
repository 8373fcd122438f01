// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/carterperez-dev/bookheaven/internal/config"
)

const (
	CollectionCustomers     = "customers"
	CollectionProducts      = "products"
	CollectionCarts         = "carts"
	CollectionAddresses     = "addresses"
	CollectionSubscriptions = "subscriptions"
	CollectionWishlists     = "wishlists"
	CollectionOrders        = "orders"
	CollectionFeedback      = "feedback"
)

type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.ConnMaxIdleTime).
		SetTimeout(cfg.OperationTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx) //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{
		Client: client,
		DB:     client.Database(cfg.Name),
	}, nil
}

func (d *Database) Close(ctx context.Context) error {
	if d.Client != nil {
		return d.Client.Disconnect(ctx)
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.Client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func (d *Database) Collection(name string) *mongo.Collection {
	return d.DB.Collection(name)
}

type DBStats struct {
	Collections int64   `bson:"collections"`
	Objects     int64   `bson:"objects"`
	DataSize    float64 `bson:"dataSize"`
	StorageSize float64 `bson:"storageSize"`
	Indexes     int64   `bson:"indexes"`
	IndexSize   float64 `bson:"indexSize"`
}

func (d *Database) Stats(ctx context.Context) (*DBStats, error) {
	var stats DBStats
	err := d.DB.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&stats)
	if err != nil {
		return nil, fmt.Errorf("db stats: %w", err)
	}
	return &stats, nil
}

type ConnectionStats struct {
	Current      int32 `bson:"current"`
	Available    int32 `bson:"available"`
	TotalCreated int64 `bson:"totalCreated"`
	Active       int32 `bson:"active"`
}

type ServerStatus struct {
	Host        string          `bson:"host"`
	Version     string          `bson:"version"`
	Uptime      float64         `bson:"uptime"`
	Connections ConnectionStats `bson:"connections"`
}

// ServerStatus reads the connection counters from the serverStatus command,
// which needs the clusterMonitor role on managed clusters.
func (d *Database) ServerStatus(ctx context.Context) (*ServerStatus, error) {
	var status ServerStatus
	cmd := bson.D{{Key: "serverStatus", Value: 1}, {Key: "metrics", Value: 0}, {Key: "locks", Value: 0}}
	if err := d.DB.RunCommand(ctx, cmd).Decode(&status); err != nil {
		return nil, fmt.Errorf("server status: %w", err)
	}
	return &status, nil
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness
// and token lookups. It is safe to call on every start.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		CollectionCustomers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "emailVerificationToken", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "refreshTokenHash", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		CollectionProducts: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		CollectionCarts: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionAddresses: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionWishlists: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionSubscriptions: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollectionFeedback: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range specs {
		if _, err := d.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}

	return nil
}

func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("parse id %q: %w", id, ErrNotFound)
	}
	return oid, nil
}

// MapMongoError folds driver errors into the package sentinels.
func MapMongoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
