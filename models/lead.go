package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadForm is the contact form as submitted by the applicant. It is held in
// the OTP registry between code issuance and verification so the client does
// not have to resubmit it.
type LeadForm struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Message string `bson:"message" json:"message"`
	Purpose string `bson:"purpose" json:"purpose"`
}

// Lead is a verified, persisted contact-form submission. Leads are only ever
// created after the applicant has confirmed ownership of the email address,
// so Verified is always true at insert time.
type Lead struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Message   string             `bson:"message" json:"message"`
	Purpose   string             `bson:"purpose" json:"purpose"`
	Verified  bool               `bson:"verified" json:"verified"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
