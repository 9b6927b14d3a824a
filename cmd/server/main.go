package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"lilypad/internal/config"
	"lilypad/internal/database"
	"lilypad/internal/engine"
	"lilypad/internal/handlers"
	"lilypad/internal/media"
	"lilypad/internal/middleware"
	"lilypad/internal/utils"
	"lilypad/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Printf("Error closing MongoDB connection: %v", err)
		}
	}()
	log.Printf("Connected to MongoDB database %q", cfg.Database.Name)

	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem()

	hub := websocket.NewHub()
	go hub.Run()

	appEngine := engine.NewEngine(system, db, hub, metrics)

	// Media storage is optional: without a bucket the image message route
	// answers 503 and everything else works.
	var uploader *media.Uploader
	if cfg.Media.Bucket != "" {
		uploader, err = media.NewUploader(ctx, cfg.Media)
		if err != nil {
			log.Fatalf("Failed to initialize media storage: %v", err)
		}
		log.Printf("Media uploads enabled on bucket %q", cfg.Media.Bucket)
	} else {
		log.Println("S3_BUCKET_NAME not set, image uploads disabled")
	}

	server := handlers.NewServer(system, appEngine, metrics, hub, uploader)
	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)

	mux := http.NewServeMux()
	register := func(path string, handler http.HandlerFunc) {
		mux.HandleFunc(path, middleware.ApplyCORS(middleware.ApplyJWTMiddleware(handler, path), corsConfig))
	}

	register("/health", server.HandleHealth())
	register("/metrics", server.HandleMetrics())

	register("/user/register", server.HandleUserRegister())
	register("/user/login", server.HandleUserLogin())
	register("/user/profile", server.HandleUserProfile())

	register("/posts", server.HandlePosts())
	register("/posts/like", server.HandlePostLike())
	register("/comments", server.HandleComments())
	register("/comments/like", server.HandleCommentLike())

	register("/messages", server.HandleMessages())
	register("/messages/previews", server.HandleChatPreviews())
	register("/messages/image", server.HandleImageMessage())

	// The socket authenticates itself from the token query parameter, so it
	// skips the JWT header middleware.
	mux.HandleFunc("/ws", middleware.ApplyCORS(server.HandleWebSocket(), corsConfig))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
