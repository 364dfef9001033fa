package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khalsa-property/backend/config"
	"github.com/khalsa-property/backend/filestore"
	"github.com/khalsa-property/backend/models"
	"github.com/khalsa-property/backend/utils"
)

func AddBlog(fs filestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			log.Printf("Invalid blog form: %v", err)
			writeMessage(w, http.StatusBadRequest, "Invalid form data.")
			return
		}

		title, _ := formField(r, "title")
		slug, _ := formField(r, "slug")
		excerpt, _ := formField(r, "excerpt")
		content, _ := formField(r, "content")
		author, _ := formField(r, "author")
		tags, _ := formField(r, "tags")
		coverImageAlt, _ := formField(r, "coverImageAlt")
		schemaMarkup, _ := formField(r, "schemaMarkup")

		if content == "" {
			writeMessage(w, http.StatusBadRequest, "Blog content is required.")
			return
		}

		covers := r.MultipartForm.File["coverImage"]
		if len(covers) == 0 {
			writeMessage(w, http.StatusBadRequest, "Cover image is required.")
			return
		}
		urls, err := saveUploads(r.Context(), fs, covers[:1])
		if err != nil {
			log.Printf("Failed to store cover image: %v", err)
			writeMessage(w, http.StatusBadRequest, "Failed to store cover image.")
			return
		}

		if slug == "" {
			slug = utils.Slugify(title)
		}
		alt := strings.TrimSpace(coverImageAlt)
		if alt == "" {
			alt = title
		}

		now := time.Now()
		post := models.BlogPost{
			ID:            primitive.NewObjectID(),
			Title:         title,
			Slug:          slug,
			Excerpt:       excerpt,
			Content:       content,
			Author:        author,
			CoverImage:    urls[0],
			CoverImageAlt: alt,
			Tags:          utils.ParseStringArray(tags),
			SchemaMarkup:  utils.ParseStringArray(schemaMarkup),
			DatePublished: now,
			LastUpdated:   now,
		}

		if _, err := config.BlogCollection.InsertOne(r.Context(), post); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				writeMessage(w, http.StatusBadRequest, "A blog with this slug already exists.")
				return
			}
			log.Printf("Error inserting blog: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}

		writeJSON(w, http.StatusCreated, post)
	}
}

func ViewBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := options.Find().SetSort(bson.D{{Key: "datePublished", Value: -1}})
		cursor, err := config.BlogCollection.Find(r.Context(), bson.M{}, opts)
		if err != nil {
			log.Printf("Error fetching blogs: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		defer cursor.Close(r.Context())

		var blogs []models.BlogPost
		if err := cursor.All(r.Context(), &blogs); err != nil {
			log.Printf("Error decoding blogs: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		if blogs == nil {
			blogs = []models.BlogPost{}
		}

		writeJSON(w, http.StatusOK, blogs)
	}
}

// RelatedBlogs returns up to four posts sharing a tag with the given one,
// newest first.
func RelatedBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		var current models.BlogPost
		err := config.BlogCollection.FindOne(r.Context(), bson.M{"slug": slug}).Decode(&current)
		if err == mongo.ErrNoDocuments {
			writeMessage(w, http.StatusNotFound, "Blog not found")
			return
		}
		if err != nil {
			log.Printf("Error fetching blog %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}

		tags := current.Tags
		if tags == nil {
			tags = []string{}
		}
		filter := bson.M{
			"slug": bson.M{"$ne": current.Slug},
			"tags": bson.M{"$in": tags},
		}
		opts := options.Find().
			SetSort(bson.D{{Key: "datePublished", Value: -1}}).
			SetLimit(4)

		cursor, err := config.BlogCollection.Find(r.Context(), filter, opts)
		if err != nil {
			log.Printf("Error fetching related blogs for %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		defer cursor.Close(r.Context())

		var related []models.BlogPost
		if err := cursor.All(r.Context(), &related); err != nil {
			log.Printf("Error decoding related blogs: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		if related == nil {
			related = []models.BlogPost{}
		}

		writeJSON(w, http.StatusOK, related)
	}
}

func GetBlogBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		var blog models.BlogPost
		err := config.BlogCollection.FindOne(r.Context(), bson.M{"slug": slug}).Decode(&blog)
		if err == mongo.ErrNoDocuments {
			writeMessage(w, http.StatusNotFound, "Blog not found")
			return
		}
		if err != nil {
			log.Printf("Error fetching blog %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}

		writeJSON(w, http.StatusOK, blog)
	}
}

func UpdateBlog(fs filestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			if err != http.ErrNotMultipart {
				log.Printf("Invalid blog update form: %v", err)
				writeMessage(w, http.StatusBadRequest, "Invalid form data.")
				return
			}
			r.ParseForm()
		}

		set := bson.M{"lastUpdated": time.Now()}
		for _, field := range []string{"title", "slug", "excerpt", "content", "author", "coverImageAlt"} {
			if v, ok := formField(r, field); ok {
				set[field] = v
			}
		}
		if v, ok := formField(r, "tags"); ok {
			set["tags"] = utils.ParseStringArray(v)
		}
		if v, ok := formField(r, "schemaMarkup"); ok {
			set["schemaMarkup"] = utils.ParseStringArray(v)
		}
		if r.MultipartForm != nil {
			if covers := r.MultipartForm.File["coverImage"]; len(covers) > 0 {
				urls, err := saveUploads(r.Context(), fs, covers[:1])
				if err != nil {
					log.Printf("Failed to store cover image: %v", err)
					writeMessage(w, http.StatusBadRequest, "Failed to store cover image.")
					return
				}
				set["coverImage"] = urls[0]
			}
		}

		after := options.After
		opts := options.FindOneAndUpdate().SetReturnDocument(after)

		var updated models.BlogPost
		err := config.BlogCollection.FindOneAndUpdate(r.Context(), bson.M{"slug": slug}, bson.M{"$set": set}, opts).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			writeMessage(w, http.StatusNotFound, "Blog not found")
			return
		}
		if err != nil {
			log.Printf("Error updating blog %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		res, err := config.BlogCollection.DeleteOne(r.Context(), bson.M{"slug": slug})
		if err != nil {
			log.Printf("Error deleting blog %s: %v", slug, err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		if res.DeletedCount == 0 {
			writeMessage(w, http.StatusNotFound, "Blog not found")
			return
		}

		writeMessage(w, http.StatusOK, "Deleted")
	}
}
