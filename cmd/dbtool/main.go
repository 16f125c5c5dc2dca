package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"shipping-decision-service/internal/adapters/repositories"
	"shipping-decision-service/internal/config"
	"shipping-decision-service/internal/platform/db"
)

// dbtool initializes the delivery history schema and loads seed data.
// Run it once against a fresh database before starting the server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/delivery_history.json")
	if err := initAndSeed(pool, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(pool *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(pool); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding delivery history...")
	if err := repositories.SeedFromJSON(pool, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
