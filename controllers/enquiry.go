package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khalsa-property/backend/config"
	"github.com/khalsa-property/backend/models"
)

func AddEnquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form models.EnquireForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			log.Printf("Invalid enquiry payload: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid request payload.")
			return
		}
		if form.Name == "" || form.Email == "" || form.Phone == "" {
			writeMessage(w, http.StatusBadRequest, "Name, email, and phone are required.")
			return
		}

		form.ID = primitive.NewObjectID()
		form.CreatedAt = time.Now()

		if _, err := config.EnquiryCollection.InsertOne(r.Context(), form); err != nil {
			log.Printf("Error inserting enquiry: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}

		writeJSON(w, http.StatusCreated, form)
	}
}

func GetEnquiries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.EnquiryCollection.Find(r.Context(), bson.M{}, opts)
		if err != nil {
			log.Printf("Error fetching enquiries: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		defer cursor.Close(r.Context())

		var forms []models.EnquireForm
		if err := cursor.All(r.Context(), &forms); err != nil {
			log.Printf("Error decoding enquiries: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		if forms == nil {
			forms = []models.EnquireForm{}
		}

		writeJSON(w, http.StatusOK, forms)
	}
}
