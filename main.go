package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"taskchatgo/internal/api"
	"taskchatgo/internal/auth"
	"taskchatgo/internal/chat"
	"taskchatgo/internal/config"
	"taskchatgo/internal/redis"
	"taskchatgo/internal/storage"
	"taskchatgo/internal/task"
)

func main() {
	cfgPath := os.Getenv("TASKCHATGO_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbType := os.Getenv("TASKCHATGO_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, dbType); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// Redis is a lookaside cache for auth tokens; the service runs without it.
	rdb, err := redis.NewClient(cfg)
	if err != nil {
		log.Printf("redis unavailable, auth falls back to database lookups: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	chatModel, err := chat.NewChatModel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("init chat model: %v", err)
	}
	if chatModel == nil {
		log.Printf("no provider API key configured, chat runs in unavailable mode")
	}

	store := chat.NewStore(db)
	taskService := task.NewService(db)
	chatService, err := chat.NewService(store, taskService, chatModel, cfg.Chat)
	if err != nil {
		log.Fatalf("init chat service: %v", err)
	}
	authService := auth.NewService(db, rdb, 24*time.Hour)

	handlers := api.NewHandler(chatService, taskService, authService)
	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8090"
	}
	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
