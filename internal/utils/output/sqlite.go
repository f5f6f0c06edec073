// internal/utils/output/sqlite.go
package output

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	"github.com/law-makers/rostercrawl/pkg/models"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SaveSQLite writes records into a fresh database at filepath. position
// keeps discovery order since the table has no natural key.
func SaveSQLite(records []models.Record, filepath string) error {
	if err := os.Remove(filepath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace database: %w", err)
	}

	db, err := sql.Open("sqlite", filepath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO records (position, full_name, birth_date, region, profile_url) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(i+1, r.FullName, r.BirthDate, r.Region, r.ProfileURL); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return db.Close()
}
