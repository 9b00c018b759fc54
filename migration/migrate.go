package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	connectAttempts = 10
	connectDelay    = 3 * time.Second
)

// Run waits for the database behind dsn and applies every pending up
// migration found at sourceURL (e.g. file://database/migrations).
func Run(dsn, sourceURL string) error {
	if err := waitForDB(dsn); err != nil {
		return err
	}

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("could not start migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations applied successfully!")
	return nil
}

// waitForDB retries connecting so the command can start alongside the database.
func waitForDB(dsn string) error {
	var lastErr error
	for i := 0; i < connectAttempts; i++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			db.Close()
		}
		if err == nil {
			log.Println("Connected to the database successfully.")
			return nil
		}
		lastErr = err
		log.Printf("Waiting for the database to be ready... (attempt %d)", i+1)
		time.Sleep(connectDelay)
	}
	return fmt.Errorf("could not connect to the database: %w", lastErr)
}
