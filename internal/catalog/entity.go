// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Image struct {
	PublicID string `bson:"public_id" json:"public_id" yaml:"public_id"`
	URL      string `bson:"url"       json:"url"       yaml:"url"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name"          json:"name"`
	Description   string             `bson:"description"   json:"description"`
	Author        string             `bson:"author"        json:"author"`
	Price         float64            `bson:"price"         json:"price"`
	Category      string             `bson:"category"      json:"category"`
	Stock         int                `bson:"stock"         json:"stock"`
	Images        []Image            `bson:"images"        json:"images"`
	ShareableLink string             `bson:"shareableLink" json:"shareableLink"`
	Featured      bool               `bson:"featured"      json:"featured"`
	Bestseller    bool               `bson:"bestseller"    json:"bestseller"`
	NewRelease    bool               `bson:"newRelease"    json:"newRelease"`
	CreatedAt     time.Time          `bson:"createdAt"     json:"createdAt"`
}

// InStock is advisory; nothing reserves stock.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
