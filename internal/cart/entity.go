// AngelaMos | 2026
// entity.go

package cart

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Line holds every unit of one product. Price is the unit price recorded at
// the most recent add.
type Line struct {
	ProductID primitive.ObjectID `bson:"product"`
	Quantity  int                `bson:"quantity"`
	Price     float64            `bson:"price"`
	AddedAt   time.Time          `bson:"addedAt"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Lines     []Line             `bson:"lines"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (c *Cart) Units() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Normalize folds lines that share a product and drops empty ones, keeping
// the position of the first occurrence.
func (c *Cart) Normalize() {
	index := make(map[primitive.ObjectID]int, len(c.Lines))
	merged := make([]Line, 0, len(c.Lines))

	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	c.Lines = merged
}
