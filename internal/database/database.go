package database

import (
	"stayledger-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists")
// when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all collections: the three record tables,
// the project/supplier pair, the link journal, and operator accounts.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TenancyRecord{},
		&models.ArchivedRecord{},
		&models.RetiredRecord{},
		&models.Project{},
		&models.Supplier{},
		&models.LinkJournal{},
		&models.User{},
	)
}
