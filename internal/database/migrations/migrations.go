package migrations

import (
	"log"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/queue"
)

// migrationsList holds all migrations in order
var migrationsList = []*gormigrate.Migration{
	{
		// Initial schema: users, the identity registry, the loan
		// application collection and the background job table.
		ID: "000001_initial_schema",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.User{},
				&models.IdentityRecord{},
				&models.LoanApplication{},
				&queue.Job{},
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				"users",
				"identity_records",
				"loan_applications",
				"jobs",
			)
		},
	},
}

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrationsList)

	if err := m.Migrate(); err != nil {
		log.Printf("Could not migrate: %v", err)
		return err
	}
	log.Printf("Migrations ran successfully")
	return nil
}
