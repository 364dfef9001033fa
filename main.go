package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/khalsa-property/backend/config"
	"github.com/khalsa-property/backend/filestore"
	"github.com/khalsa-property/backend/middleware"
	"github.com/khalsa-property/backend/otp"
	"github.com/khalsa-property/backend/routes"
	"github.com/khalsa-property/backend/store"
	"github.com/khalsa-property/backend/utils"
)

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
}

func newFileStore(router *mux.Router) (filestore.Store, error) {
	if os.Getenv("FILE_STORE") == "s3" {
		return filestore.NewS3Store(
			context.Background(),
			os.Getenv("S3_BUCKET"),
			os.Getenv("S3_PREFIX"),
			os.Getenv("S3_PUBLIC_URL"),
		)
	}

	local, err := filestore.NewLocalStore(os.Getenv("UPLOAD_DIR"), os.Getenv("PUBLIC_URL"))
	if err != nil {
		return nil, err
	}
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	return local, nil
}

func newOTPRegistry(redisClient *redis.Client) otp.Registry {
	if os.Getenv("OTP_STORE") == "redis" {
		return otp.NewRedisRegistry(redisClient, otp.DefaultTTL)
	}
	return otp.NewMemoryRegistry(otp.DefaultTTL)
}

func main() {
	loadEnv()

	client, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatalf("Error closing MongoDB connection: %v", err)
		}
		log.Println("MongoDB connection closed")
	}()

	config.InitCollections(client)
	if err := config.EnsureIndexes(client); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	redisClient := config.InitRedis()

	router := mux.NewRouter()
	router.Use(middleware.Recover)

	fs, err := newFileStore(router)
	if err != nil {
		log.Fatalf("Failed to set up file storage: %v", err)
	}

	var mailer utils.EmailSender = utils.NewSMTPSenderFromEnv()
	registry := newOTPRegistry(redisClient)
	leads := store.NewMongoLeadStore(config.LeadCollection)

	routes.Routes(router, redisClient, fs, leads, registry, mailer)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Error during server shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
