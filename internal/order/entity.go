// AngelaMos | 2026
// entity.go

package order

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const StatusProcessing = "Processing"

// Item is a snapshot of the product at checkout; later catalog edits do
// not change placed orders.
type Item struct {
	ProductID primitive.ObjectID `bson:"product"  json:"product"`
	Name      string             `bson:"name"     json:"name"`
	Image     string             `bson:"image"    json:"image,omitempty"`
	Price     float64            `bson:"price"    json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type ShippingAddress struct {
	FullName string `bson:"fullName" json:"fullName"`
	Phone    string `bson:"phone"    json:"phone"`
	Address  string `bson:"address"  json:"address"`
	City     string `bson:"city"     json:"city"`
	State    string `bson:"state"    json:"state"`
	ZipCode  string `bson:"zipCode"  json:"zipCode"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"   json:"_id"`
	UserID          primitive.ObjectID `bson:"userId"          json:"user"`
	Items           []Item             `bson:"items"           json:"orderItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	ItemsPrice      float64            `bson:"itemsPrice"      json:"itemsPrice"`
	TotalPrice      float64            `bson:"totalPrice"      json:"totalPrice"`
	Status          string             `bson:"orderStatus"     json:"orderStatus"`
	CreatedAt       time.Time          `bson:"createdAt"       json:"createdAt"`
}
