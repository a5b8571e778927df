package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/config"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()
	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	defer srv.Close(ctx)

	// answers report an uninitialized index until a later rebuild succeeds
	if err := srv.Engine.Rebuild(ctx); err != nil {
		log.Printf("Initial RAG index build failed: %v", err)
	}

	r := srv.SetupRouter()

	log.Printf("Starting server on port %s (store=%s, llm=%s)", cfg.Server.Port, cfg.Store.Backend, cfg.LLM.Provider)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
