package controllers

import (
	"context"
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khalsa-property/backend/config"
	"github.com/khalsa-property/backend/filestore"
	"github.com/khalsa-property/backend/models"
	"github.com/khalsa-property/backend/utils"
)

const (
	maxUploadBytes    = 32 << 20
	propertyCacheKey  = "properties:list"
	propertyCacheTTL  = 10 * time.Minute
	propertyScanMatch = "properties:*"
)

// formField reads a multipart or urlencoded form value, distinguishing an
// absent field from an empty one so PATCH can leave untouched fields alone.
func formField(r *http.Request, key string) (string, bool) {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
		return "", false
	}
	if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

// saveUploads stores every file under the given multipart field and returns
// their public URLs.
func saveUploads(ctx context.Context, fs filestore.Store, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		key, contentType, err := filestore.BuildKey(fh.Filename)
		if err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		url, err := fs.Save(ctx, key, f, fh.Size, contentType)
		f.Close()
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func CreateProperty(redisClient *redis.Client, fs filestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			log.Printf("Invalid property form: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid form data.")
			return
		}

		title, _ := formField(r, "title")
		purpose, _ := formField(r, "purpose")
		location, _ := formField(r, "location")
		if title == "" || purpose == "" || location == "" {
			writeMessage(w, http.StatusBadRequest, "title, purpose, and location are required")
			return
		}

		description, _ := formField(r, "description")
		googleMapURL, _ := formField(r, "googleMapUrl")
		videoLink, _ := formField(r, "videoLink")
		price, _ := formField(r, "price")
		bedrooms, _ := formField(r, "bedrooms")
		bathrooms, _ := formField(r, "bathrooms")
		areaSqft, _ := formField(r, "areaSqft")
		highlights, _ := formField(r, "highlights")
		featuresAmenities, _ := formField(r, "featuresAmenities")
		nearby, _ := formField(r, "nearby")
		extraHighlights, _ := formField(r, "extraHighlights")

		var images []string
		if r.MultipartForm != nil {
			saved, err := saveUploads(r.Context(), fs, r.MultipartForm.File["images"])
			if err != nil {
				log.Printf("Failed to store property images: %v", err)
				writeMessage(w, http.StatusBadRequest, "Failed to store images.")
				return
			}
			images = saved
		}
		if images == nil {
			images = []string{}
		}

		now := time.Now()
		property := models.Property{
			ID:                primitive.NewObjectID(),
			Title:             title,
			Slug:              utils.Slugify(title),
			Description:       description,
			Purpose:           purpose,
			Location:          location,
			Images:            images,
			Price:             utils.ParseNullableNumber(price),
			Bedrooms:          utils.ParseNullableNumber(bedrooms),
			Bathrooms:         utils.ParseNullableNumber(bathrooms),
			AreaSqft:          utils.ParseNullableNumber(areaSqft),
			Highlights:        utils.ParseStringArray(highlights),
			FeaturesAmenities: utils.ParseStringArray(featuresAmenities),
			Nearby:            utils.ParseStringArray(nearby),
			ExtraHighlights:   utils.ParseStringArray(extraHighlights),
			GoogleMapURL:      googleMapURL,
			VideoLink:         videoLink,
			CreatedAt:         now,
			LastUpdated:       now,
		}

		_, err := config.PropertyCollection.InsertOne(r.Context(), property)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				writeMessage(w, http.StatusBadRequest, "A property with this title already exists.")
				return
			}
			log.Printf("Insert failed: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to create property")
			return
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		writeJSON(w, http.StatusCreated, property)
	}
}

func GetProperties(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cached, err := redisClient.Get(r.Context(), propertyCacheKey).Result()
		if err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cached))
			return
		}
		if err != redis.Nil {
			log.Printf("Redis GET error for key %s: %v", propertyCacheKey, err)
		}

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.PropertyCollection.Find(r.Context(), bson.M{}, findOptions)
		if err != nil {
			log.Printf("Error fetching properties: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch properties")
			return
		}
		defer cursor.Close(r.Context())

		var properties []models.Property
		if err := cursor.All(r.Context(), &properties); err != nil {
			log.Printf("Error decoding properties: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch properties")
			return
		}
		if properties == nil {
			properties = []models.Property{}
		}

		resultBytes, err := json.Marshal(properties)
		if err != nil {
			log.Printf("Failed to serialize properties: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to encode response")
			return
		}

		if err := redisClient.Set(r.Context(), propertyCacheKey, resultBytes, propertyCacheTTL).Err(); err != nil {
			log.Printf("Failed to cache response for key %s: %v", propertyCacheKey, err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

func GetPropertyBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		var property models.Property
		err := config.PropertyCollection.FindOne(r.Context(), bson.M{"slug": slug}).Decode(&property)
		if err == mongo.ErrNoDocuments {
			writeMessage(w, http.StatusNotFound, "Property not found")
			return
		}
		if err != nil {
			log.Printf("Error fetching property %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch property")
			return
		}

		writeJSON(w, http.StatusOK, property)
	}
}

func UpdateProperty(redisClient *redis.Client, fs filestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			if err != http.ErrNotMultipart {
				log.Printf("Invalid property update form: %v", err)
				writeMessage(w, http.StatusBadRequest, "Invalid form data.")
				return
			}
			r.ParseForm()
		}

		var existing models.Property
		err := config.PropertyCollection.FindOne(r.Context(), bson.M{"slug": slug}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			writeMessage(w, http.StatusNotFound, "Property not found")
			return
		}
		if err != nil {
			log.Printf("Error fetching property %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch property")
			return
		}

		updated := existing

		if v, ok := formField(r, "title"); ok {
			updated.Title = v
			updated.Slug = utils.Slugify(v)
		}
		if v, ok := formField(r, "description"); ok {
			updated.Description = v
		}
		if v, ok := formField(r, "purpose"); ok {
			updated.Purpose = v
		}
		if v, ok := formField(r, "location"); ok {
			updated.Location = v
		}
		if v, ok := formField(r, "googleMapUrl"); ok {
			updated.GoogleMapURL = v
		}
		if v, ok := formField(r, "videoLink"); ok {
			updated.VideoLink = v
		}
		if v, ok := formField(r, "price"); ok {
			updated.Price = utils.ParseNullableNumber(v)
		}
		if v, ok := formField(r, "bedrooms"); ok {
			updated.Bedrooms = utils.ParseNullableNumber(v)
		}
		if v, ok := formField(r, "bathrooms"); ok {
			updated.Bathrooms = utils.ParseNullableNumber(v)
		}
		if v, ok := formField(r, "areaSqft"); ok {
			updated.AreaSqft = utils.ParseNullableNumber(v)
		}
		if v, ok := formField(r, "highlights"); ok {
			updated.Highlights = utils.ParseStringArray(v)
		}
		if v, ok := formField(r, "featuresAmenities"); ok {
			updated.FeaturesAmenities = utils.ParseStringArray(v)
		}
		if v, ok := formField(r, "nearby"); ok {
			updated.Nearby = utils.ParseStringArray(v)
		}
		if v, ok := formField(r, "extraHighlights"); ok {
			updated.ExtraHighlights = utils.ParseStringArray(v)
		}

		// existingImages is the keep-list sent by the client; newly uploaded
		// files are appended after it.
		images := existing.Images
		if v, ok := formField(r, "existingImages"); ok {
			images = utils.ParseStringArray(v)
		}
		if r.MultipartForm != nil && len(r.MultipartForm.File["images"]) > 0 {
			saved, err := saveUploads(r.Context(), fs, r.MultipartForm.File["images"])
			if err != nil {
				log.Printf("Failed to store property images: %v", err)
				writeMessage(w, http.StatusBadRequest, "Failed to store images.")
				return
			}
			images = append(images, saved...)
		}
		updated.Images = images
		updated.LastUpdated = time.Now()

		after := options.After
		opts := options.FindOneAndUpdate().SetReturnDocument(after)
		update := bson.M{"$set": bson.M{
			"title":             updated.Title,
			"slug":              updated.Slug,
			"description":       updated.Description,
			"purpose":           updated.Purpose,
			"location":          updated.Location,
			"price":             updated.Price,
			"bedrooms":          updated.Bedrooms,
			"bathrooms":         updated.Bathrooms,
			"areaSqft":          updated.AreaSqft,
			"highlights":        updated.Highlights,
			"featuresAmenities": updated.FeaturesAmenities,
			"nearby":            updated.Nearby,
			"extraHighlights":   updated.ExtraHighlights,
			"googleMapUrl":      updated.GoogleMapURL,
			"videoLink":         updated.VideoLink,
			"images":            updated.Images,
			"lastUpdated":       updated.LastUpdated,
		}}

		var result models.Property
		err = config.PropertyCollection.FindOneAndUpdate(r.Context(), bson.M{"_id": existing.ID}, update, opts).Decode(&result)
		if err != nil {
			log.Printf("Update failed for property %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to update property")
			return
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		writeJSON(w, http.StatusOK, result)
	}
}

func DeleteProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		res, err := config.PropertyCollection.DeleteOne(r.Context(), bson.M{"slug": slug})
		if err != nil {
			log.Printf("Delete failed for property %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Failed to delete property")
			return
		}
		if res.DeletedCount == 0 {
			writeMessage(w, http.StatusNotFound, "Property not found")
			return
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		writeMessage(w, http.StatusOK, "Property deleted successfully")
	}
}

func deletePropertyCache(redisClient *redis.Client) {
	ctx := context.Background()
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, propertyScanMatch, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", propertyScanMatch, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Error deleting %d property cache keys: %v", len(keysToDelete), err)
	}
}
