package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Sell struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Phone       string             `bson:"phone" json:"phone"`
	Location    string             `bson:"location" json:"location"`
	AreaSqft    float64            `bson:"areaSqft" json:"areaSqft"`
	Image       string             `bson:"image" json:"image"`
	Approved    bool               `bson:"approved" json:"approved"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	LastUpdated time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}
