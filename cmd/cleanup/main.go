package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/muraqib/backend/config"
	"github.com/muraqib/backend/database"
	"github.com/muraqib/backend/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("Start cleanup...")

	violations := store.New(database.DB)
	if err := violations.DeleteAll(context.Background()); err != nil {
		log.Fatalf("Failed to delete violations: %v", err)
	}
	fmt.Println("✅ Deleted all violations")

	fmt.Println("Cleanup finished successfully")
}
