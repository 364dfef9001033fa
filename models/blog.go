package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BlogPost struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title         string             `bson:"title" json:"title"`
	Slug          string             `bson:"slug" json:"slug"`
	Excerpt       string             `bson:"excerpt" json:"excerpt"`
	Content       string             `bson:"content" json:"content"`
	Author        string             `bson:"author" json:"author"`
	CoverImage    string             `bson:"coverImage" json:"coverImage"`
	CoverImageAlt string             `bson:"coverImageAlt" json:"coverImageAlt"`
	Tags          []string           `bson:"tags" json:"tags"`
	SchemaMarkup  []string           `bson:"schemaMarkup" json:"schemaMarkup"` // JSON-LD strings
	DatePublished time.Time          `bson:"datePublished" json:"datePublished"`
	LastUpdated   time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}
