package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/pranjitbis/learning-management-system/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Connect opens a GORM connection to Postgres, retrying a few times so a
// containerized database that is still starting up does not fail the boot.
func Connect(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		log.Printf("Database connection attempt %d failed, retrying in %s: %v", i+1, connectBackoff, err)
		time.Sleep(connectBackoff)
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}

// AutoMigrate creates or updates the schema for all domain models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Course{},
		&domain.Video{},
		&domain.Access{},
		&domain.VideoProgress{},
		&domain.CourseProgress{},
		&domain.Certificate{},
	)
}
