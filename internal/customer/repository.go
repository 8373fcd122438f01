// AngelaMos | 2026
// repository.go

package customer

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	UpdateProfile(ctx context.Context, id, name, email string, resetVerification bool) (*Customer, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetToken(ctx context.Context, id string, kind TokenKind, hash string, expiresAt time.Time) error
	// ClearToken removes the slot only while it still holds hash.
	ClearToken(ctx context.Context, id string, kind TokenKind, hash string) error
	ConsumeToken(
		ctx context.Context,
		kind TokenKind,
		hash string,
		now time.Time,
		effect TokenEffect,
	) (*Customer, error)
	MarkVerified(ctx context.Context, email string) (*Customer, error)
	SetRefreshToken(ctx context.Context, id, hash string, expiresAt time.Time) error
	RotateRefreshToken(
		ctx context.Context,
		oldHash string,
		now time.Time,
		newHash string,
		expiresAt time.Time,
	) (*Customer, error)
	ClearRefreshToken(ctx context.Context, id string) error
	SetRole(ctx context.Context, email, role string) (*Customer, error)
	AddFeedback(ctx context.Context, f *Feedback) error
	// ListFeedback returns newest first; an empty status matches all.
	ListFeedback(ctx context.Context, status string) ([]Feedback, error)
	GetFeedback(ctx context.Context, id primitive.ObjectID) (*Feedback, error)
	SetFeedbackStatus(ctx context.Context, id primitive.ObjectID, status string, now time.Time) (*Feedback, error)
}

type repository struct {
	customers *mongo.Collection
	feedback  *mongo.Collection
}

func NewRepository(db *core.Database) Repository {
	return &repository{
		customers: db.Collection(core.CollectionCustomers),
		feedback:  db.Collection(core.CollectionFeedback),
	}
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}

	_, err := r.customers.InsertOne(ctx, c)
	return core.MapMongoError("create customer", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return r.findOne(ctx, "get customer", bson.M{"_id": oid})
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return r.findOne(ctx, "get customer by email", bson.M{"email": email})
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	id, name, email string,
	resetVerification bool,
) (*Customer, error) {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return r.findOneAndUpdate(ctx, "update profile",
		bson.M{"_id": oid},
		profileUpdate(name, email, resetVerification, time.Now()),
	)
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, "update password", id, bson.M{
		"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now()},
	})
}

func (r *repository) SetToken(
	ctx context.Context,
	id string,
	kind TokenKind,
	hash string,
	expiresAt time.Time,
) error {
	hashField, expireField := kind.Fields()
	return r.updateByID(ctx, "set "+kind.String()+" token", id, bson.M{
		"$set": bson.M{hashField: hash, expireField: expiresAt},
	})
}

func (r *repository) ClearToken(ctx context.Context, id string, kind TokenKind, hash string) error {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}

	hashField, expireField := kind.Fields()
	_, err = r.customers.UpdateOne(ctx,
		bson.M{"_id": oid, hashField: hash},
		bson.M{"$unset": bson.M{hashField: "", expireField: ""}},
	)
	return core.MapMongoError("clear "+kind.String()+" token", err)
}

// ConsumeToken matches, clears and applies the effect in one
// findAndModify, so two requests racing on the same token cannot both win.
func (r *repository) ConsumeToken(
	ctx context.Context,
	kind TokenKind,
	hash string,
	now time.Time,
	effect TokenEffect,
) (*Customer, error) {
	filter, update := consumeQuery(kind, hash, now, effect)
	return r.findOneAndUpdate(ctx, "consume "+kind.String()+" token", filter, update)
}

func (r *repository) MarkVerified(ctx context.Context, email string) (*Customer, error) {
	hashField, expireField := TokenVerification.Fields()
	return r.findOneAndUpdate(ctx, "mark verified",
		bson.M{"email": email},
		bson.M{
			"$set":   bson.M{"emailVerified": true, "updatedAt": time.Now()},
			"$unset": bson.M{hashField: "", expireField: ""},
		},
	)
}

func (r *repository) SetRefreshToken(
	ctx context.Context,
	id, hash string,
	expiresAt time.Time,
) error {
	return r.updateByID(ctx, "set refresh token", id, bson.M{
		"$set": bson.M{"refreshTokenHash": hash, "refreshTokenExpire": expiresAt},
	})
}

func (r *repository) RotateRefreshToken(
	ctx context.Context,
	oldHash string,
	now time.Time,
	newHash string,
	expiresAt time.Time,
) (*Customer, error) {
	return r.findOneAndUpdate(ctx, "rotate refresh token",
		rotateFilter(oldHash, now),
		bson.M{"$set": bson.M{"refreshTokenHash": newHash, "refreshTokenExpire": expiresAt}},
	)
}

func (r *repository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.updateByID(ctx, "clear refresh token", id, bson.M{
		"$unset": bson.M{"refreshTokenHash": "", "refreshTokenExpire": ""},
	})
}

func (r *repository) SetRole(ctx context.Context, email, role string) (*Customer, error) {
	return r.findOneAndUpdate(ctx, "set role",
		bson.M{"email": email},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}},
	)
}

func (r *repository) AddFeedback(ctx context.Context, f *Feedback) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := r.feedback.InsertOne(ctx, f)
	return core.MapMongoError("add feedback", err)
}

// profileUpdate drops the refresh slot together with the verified flag, so
// a changed address cannot keep refreshing into new sessions.
func (r *repository) ListFeedback(ctx context.Context, status string) ([]Feedback, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cur, err := r.feedback.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, core.MapMongoError("list feedback", err)
	}

	out := []Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, core.MapMongoError("list feedback", err)
	}
	return out, nil
}

func (r *repository) GetFeedback(ctx context.Context, id primitive.ObjectID) (*Feedback, error) {
	var f Feedback
	if err := r.feedback.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, core.MapMongoError("get feedback", err)
	}
	return &f, nil
}

func (r *repository) SetFeedbackStatus(
	ctx context.Context,
	id primitive.ObjectID,
	status string,
	now time.Time,
) (*Feedback, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f Feedback
	err := r.feedback.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": now}},
		opts,
	).Decode(&f)
	if err != nil {
		return nil, core.MapMongoError("set feedback status", err)
	}
	return &f, nil
}

func profileUpdate(name, email string, resetVerification bool, now time.Time) bson.M {
	update := bson.M{"$set": bson.M{"name": name, "email": email, "updatedAt": now}}
	if resetVerification {
		update["$set"].(bson.M)["emailVerified"] = false
		update["$unset"] = bson.M{"refreshTokenHash": "", "refreshTokenExpire": ""}
	}
	return update
}

func consumeQuery(kind TokenKind, hash string, now time.Time, effect TokenEffect) (filter, update bson.M) {
	hashField, expireField := kind.Fields()

	set := bson.M{"updatedAt": now}
	unset := bson.M{hashField: "", expireField: ""}

	if effect.Verify {
		set["emailVerified"] = true
	}
	if effect.PasswordHash != "" {
		set["passwordHash"] = effect.PasswordHash
		unset["refreshTokenHash"] = ""
		unset["refreshTokenExpire"] = ""
	}

	return bson.M{hashField: hash, expireField: bson.M{"$gt": now}},
		bson.M{"$set": set, "$unset": unset}
}

func rotateFilter(oldHash string, now time.Time) bson.M {
	return bson.M{
		"refreshTokenHash":   oldHash,
		"refreshTokenExpire": bson.M{"$gt": now},
		"emailVerified":      true,
	}
}

func (r *repository) findOne(ctx context.Context, op string, filter bson.M) (*Customer, error) {
	var c Customer
	if err := r.customers.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, core.MapMongoError(op, err)
	}
	return &c, nil
}

func (r *repository) findOneAndUpdate(
	ctx context.Context,
	op string,
	filter, update bson.M,
) (*Customer, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c Customer
	if err := r.customers.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		return nil, core.MapMongoError(op, err)
	}
	return &c, nil
}

func (r *repository) updateByID(ctx context.Context, op, id string, update bson.M) error {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.customers.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return core.MapMongoError(op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
