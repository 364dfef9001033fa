package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Property struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Purpose     string             `bson:"purpose" json:"purpose"` // Buy, Sell or Offplan
	Location    string             `bson:"location" json:"location"`
	Images      []string           `bson:"images" json:"images"`

	Price     *float64 `bson:"price" json:"price"`
	Bedrooms  *float64 `bson:"bedrooms" json:"bedrooms"`
	Bathrooms *float64 `bson:"bathrooms" json:"bathrooms"`
	AreaSqft  *float64 `bson:"areaSqft" json:"areaSqft"`

	Highlights        []string `bson:"highlights" json:"highlights"`
	FeaturesAmenities []string `bson:"featuresAmenities" json:"featuresAmenities"`
	Nearby            []string `bson:"nearby" json:"nearby"`
	ExtraHighlights   []string `bson:"extraHighlights" json:"extraHighlights"`

	GoogleMapURL string `bson:"googleMapUrl" json:"googleMapUrl"`
	VideoLink    string `bson:"videoLink" json:"videoLink"`

	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	LastUpdated time.Time `bson:"lastUpdated" json:"lastUpdated"`
}
