// AngelaMos | 2026
// entity.go

package wishlist

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Wishlist struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `bson:"userId"`
	Products  []primitive.ObjectID `bson:"products"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}
