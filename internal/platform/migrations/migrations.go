package migrations

import (
	"gorm.io/gorm"

	enrollmentpg "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/persistence/postgres"
)

// Run applies the schema for the enrollment context: event log, projection, catalog and idempotency keys.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(enrollmentpg.Models()...)
}
