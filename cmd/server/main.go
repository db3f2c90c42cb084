package main

import (
	"context"
	"log"
	"os"

	"portfolio-api/config"
	"portfolio-api/internal/admin"
	"portfolio-api/internal/cache"
	"portfolio-api/internal/chat"
	"portfolio-api/internal/contact"
	"portfolio-api/internal/database"
	"portfolio-api/internal/logs"
	"portfolio-api/internal/profile"
	"portfolio-api/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	logService := &logs.LogService{DB: db}

	profileService := &profile.ProfileService{DB: db}
	if _, err := profileService.Reload(cfg.ContentFile); err != nil {
		log.Printf("content not loaded from %s: %v", cfg.ContentFile, err)
	}
	profile.RegisterRoutes(r, profileService)

	text, speech, err := chat.NewProviders(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to configure chat providers:", err)
	}

	cacheStore := &cache.GormStore{DB: db}
	coordinator := &chat.Coordinator{
		Text:          text,
		Speech:        speech,
		Cache:         cache.NewResponseCache(cacheStore),
		Profile:       profileService,
		Logs:          logService,
		HistoryWindow: cfg.HistoryWindow,
		TextTimeout:   cfg.TextTimeout,
		AudioTimeout:  cfg.AudioTimeout,
	}

	adminService := &admin.AdminService{
		Cache:        cacheStore,
		Content:      profileService,
		ContentFile:  cfg.ContentFile,
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.JWTSecret,
	}

	if cfg.SpeechArchiveBucket != "" {
		archive := util.NewGCSArchive(cfg.SpeechArchiveBucket)
		coordinator.Archive = archive
		adminService.Archive = archive
	}

	chat.RegisterRoutes(r, coordinator, cfg.AllowedOrigins)
	contact.RegisterRoutes(r, &contact.ContactService{Text: text, Logs: logService, Timeout: cfg.TextTimeout})
	admin.RegisterRoutes(r, adminService, logService)

	// --- Cloud Run expects plain HTTP, on $PORT, bind to 0.0.0.0 ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
