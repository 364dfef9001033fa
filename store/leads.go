// Package store wraps the durable lead collection behind a small interface
// so the verification handlers can be exercised without a live database.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khalsa-property/backend/models"
)

// ErrDuplicateEmail is returned by Insert when a lead with the same email
// already exists. The unique index on the email field raises it even when
// two verifications race past the existence check.
var ErrDuplicateEmail = errors.New("lead email already exists")

type LeadStore interface {
	// FindByEmail returns the lead for email, or (nil, nil) when absent.
	FindByEmail(ctx context.Context, email string) (*models.Lead, error)

	// Insert persists a new lead. Returns ErrDuplicateEmail when the email
	// is already taken.
	Insert(ctx context.Context, lead *models.Lead) error

	// ListAll returns every lead, newest first.
	ListAll(ctx context.Context) ([]models.Lead, error)
}

type mongoLeadStore struct {
	coll *mongo.Collection
}

func NewMongoLeadStore(coll *mongo.Collection) LeadStore {
	return &mongoLeadStore{coll: coll}
}

func (s *mongoLeadStore) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	var lead models.Lead
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&lead)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *mongoLeadStore) Insert(ctx context.Context, lead *models.Lead) error {
	_, err := s.coll.InsertOne(ctx, lead)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *mongoLeadStore) ListAll(ctx context.Context) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}
