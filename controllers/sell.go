package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khalsa-property/backend/config"
	"github.com/khalsa-property/backend/filestore"
	"github.com/khalsa-property/backend/models"
)

func CreateSell(fs filestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			log.Printf("Invalid sell form: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid form data.")
			return
		}

		name, _ := formField(r, "name")
		email, _ := formField(r, "email")
		phone, _ := formField(r, "phone")
		location, _ := formField(r, "location")
		areaSqft, _ := formField(r, "areaSqft")

		if name == "" || email == "" || phone == "" || location == "" || areaSqft == "" {
			writeMessage(w, http.StatusBadRequest, "Failed to create sell entry")
			return
		}
		area, err := strconv.ParseFloat(areaSqft, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Failed to create sell entry")
			return
		}

		image := ""
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			urls, err := saveUploads(r.Context(), fs, files[:1])
			if err != nil {
				log.Printf("Failed to store sell image: %v", err)
				writeMessage(w, http.StatusBadRequest, "Failed to store image.")
				return
			}
			image = urls[0]
		}

		now := time.Now()
		sell := models.Sell{
			ID:          primitive.NewObjectID(),
			Name:        name,
			Email:       email,
			Phone:       phone,
			Location:    location,
			AreaSqft:    area,
			Image:       image,
			Approved:    false,
			CreatedAt:   now,
			LastUpdated: now,
		}

		if _, err := config.SellCollection.InsertOne(r.Context(), sell); err != nil {
			log.Printf("Error inserting sell entry: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to create sell entry")
			return
		}

		writeJSON(w, http.StatusCreated, sell)
	}
}

func GetSells() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.SellCollection.Find(r.Context(), bson.M{}, opts)
		if err != nil {
			log.Printf("Error fetching sells: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch sells")
			return
		}
		defer cursor.Close(r.Context())

		var sells []models.Sell
		if err := cursor.All(r.Context(), &sells); err != nil {
			log.Printf("Error decoding sells: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch sells")
			return
		}
		if sells == nil {
			sells = []models.Sell{}
		}

		writeJSON(w, http.StatusOK, sells)
	}
}

func GetSellByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid sell ID")
			return
		}

		var sell models.Sell
		err = config.SellCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&sell)
		if err == mongo.ErrNoDocuments {
			writeMessage(w, http.StatusNotFound, "Sell not found")
			return
		}
		if err != nil {
			log.Printf("Error fetching sell %s: %v", id, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch sell")
			return
		}

		writeJSON(w, http.StatusOK, sell)
	}
}

func UpdateSell(fs filestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid sell ID")
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			if err != http.ErrNotMultipart {
				log.Printf("Invalid sell update form: %v", err)
				writeMessage(w, http.StatusBadRequest, "Invalid form data.")
				return
			}
			r.ParseForm()
		}

		set := bson.M{"lastUpdated": time.Now()}
		for _, field := range []string{"name", "email", "phone", "location"} {
			if v, ok := formField(r, field); ok {
				set[field] = v
			}
		}
		if v, ok := formField(r, "areaSqft"); ok {
			area, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "Failed to update sell")
				return
			}
			set["areaSqft"] = area
		}
		if v, ok := formField(r, "approved"); ok {
			approved, err := strconv.ParseBool(v)
			if err == nil {
				set["approved"] = approved
			}
		}
		if r.MultipartForm != nil {
			if files := r.MultipartForm.File["image"]; len(files) > 0 {
				urls, err := saveUploads(r.Context(), fs, files[:1])
				if err != nil {
					log.Printf("Failed to store sell image: %v", err)
					writeMessage(w, http.StatusBadRequest, "Failed to store image.")
					return
				}
				set["image"] = urls[0]
			}
		}

		after := options.After
		opts := options.FindOneAndUpdate().SetReturnDocument(after)

		var updated models.Sell
		err = config.SellCollection.FindOneAndUpdate(r.Context(), bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			writeMessage(w, http.StatusNotFound, "Sell not found")
			return
		}
		if err != nil {
			log.Printf("Error updating sell %s: %v", id, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to update sell")
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteSell() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid sell ID")
			return
		}

		res, err := config.SellCollection.DeleteOne(r.Context(), bson.M{"_id": objID})
		if err != nil {
			log.Printf("Error deleting sell %s: %v", id, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to delete sell")
			return
		}
		if res.DeletedCount == 0 {
			writeMessage(w, http.StatusNotFound, "Sell not found")
			return
		}

		writeMessage(w, http.StatusOK, "Sell deleted successfully")
	}
}
