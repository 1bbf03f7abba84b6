package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresConfig holds the connection settings for the relational backend.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, sslMode)
}

// OpenPostgres connects with error translation on, so unique violations surface as gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the relational backend uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserGorm{},
		&CustomerGorm{},
		&EnrollmentGorm{},
		&ProgressGorm{},
		&CompletedLessonGorm{},
		&BookmarkGorm{},
		&ReviewGorm{},
		&CertificateGorm{},
	)
}

// PingPostgres reports whether the underlying connection pool answers.
func PingPostgres(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// exclusiveKey identifies the single review or certificate a user may hold for a
// course when duplicates are disallowed. Both backends index it uniquely.
func exclusiveKey(userID uuid.UUID, courseID string) string {
	return userID.String() + "/" + courseID
}
