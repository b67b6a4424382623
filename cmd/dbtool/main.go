package main

import (
	"context"
	"log"
	"os"
	"strings"

	"flight-price-service/internal/adapters/repositories"
	"flight-price-service/internal/config"
	"flight-price-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool prepares a Postgres database for the result store and optionally
// copies the history of a local SQLite file into it.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn, repositories.DialectPostgres); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	importPath := config.Get("SQLITE_IMPORT_PATH", "")
	if importPath == "" {
		return
	}

	src, err := db.OpenSQLite(importPath)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	log.Printf("Importing history from %s...", importPath)
	n, err := repositories.CopyHistory(
		context.Background(),
		repositories.NewSQLResultStore(src, repositories.DialectSQLite),
		repositories.NewSQLResultStore(conn, repositories.DialectPostgres),
	)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("Import complete: %d search dates.", n)
}
