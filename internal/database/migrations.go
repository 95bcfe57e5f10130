package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations executes all database migrations
func RunMigrations(db *gorm.DB) error {
	// Create indexes for better performance
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates database indexes
func createIndexes(db *gorm.DB) error {
	// Index for the mediation enrichment scan (status + attempts)
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_mediation_cases_fetch
		ON mediation_cases(fetch_status, fetch_attempts)
	`).Error; err != nil {
		return err
	}

	// Index for query-time mediation lookups by date
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_mediation_cases_date
		ON mediation_cases(listing_date)
	`).Error; err != nil {
		return err
	}

	// Index for the verified-advocate directory scan
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_advocates_verified
		ON advocates(verified, active)
	`).Error; err != nil {
		return err
	}

	return nil
}
