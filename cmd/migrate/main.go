package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"crmrelay/internal/migrations"

	_ "github.com/mattn/go-sqlite3"
)

// migrate applies the crmrelay schema to a database file, creating it if
// needed. The schema statements are idempotent, so running this against
// an existing database is safe.
func main() {
	dbPath := flag.String("db", "./crmrelay.db", "Path to the database file")
	flag.Parse()

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		log.Fatalf("Failed to create migrations table: %v", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = 1").Scan(&count)
	if err != nil {
		log.Fatalf("Failed to check migration status: %v", err)
	}

	if count > 0 {
		fmt.Println("Schema version 1 already applied, skipping...")
		return
	}

	fmt.Println("Applying schema version 1: api_keys and messages tables")

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (1)"); err != nil {
		log.Fatalf("Failed to record migration: %v", err)
	}

	fmt.Println("Schema version 1 applied successfully")
	fmt.Println("Database ready. You can now start crmrelay.")
}
