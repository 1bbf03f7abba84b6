package repository

import (
	"context"
	"errors"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CertificateGorm struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code     string    `gorm:"uniqueIndex;not null;size:16"`
	UserID   uuid.UUID `gorm:"type:uuid;index:idx_certificate_owner"`
	Username string
	CourseID string    `gorm:"size:128;index:idx_certificate_owner"`
	IssuedAt time.Time
	// set only under the one-certificate-per-course policy; NULLs never collide
	ExclusiveKey *string `gorm:"size:200;uniqueIndex"`
}

func (CertificateGorm) TableName() string {
	return "certificates"
}

func (m *CertificateGorm) toDomain() *domain.Certificate {
	return &domain.Certificate{
		ID:       m.ID,
		Code:     m.Code,
		UserID:   m.UserID,
		Username: m.Username,
		CourseID: m.CourseID,
		IssuedAt: m.IssuedAt,
	}
}

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func toGormCertificate(cert *domain.Certificate) *CertificateGorm {
	return &CertificateGorm{
		ID:       cert.ID,
		Code:     cert.Code,
		UserID:   cert.UserID,
		Username: cert.Username,
		CourseID: cert.CourseID,
		IssuedAt: cert.IssuedAt,
	}
}

func (r *CertificateRepository) Create(ctx context.Context, cert *domain.Certificate) error {
	err := r.db.WithContext(ctx).Create(toGormCertificate(cert)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateCode
	}
	return err
}

// CreateExclusive only arbitrates on exclusive_key, so a code collision still
// surfaces as a duplicate-key error.
func (r *CertificateRepository) CreateExclusive(ctx context.Context, cert *domain.Certificate) error {
	model := toGormCertificate(cert)
	key := exclusiveKey(cert.UserID, cert.CourseID)
	model.ExclusiveKey = &key

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "exclusive_key"}}, DoNothing: true}).
		Create(model)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateCode
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCertificateExists
	}
	return nil
}

func (r *CertificateRepository) GetByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	var model CertificateGorm
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCertificateNotFound
		}
		return nil, err
	}
	return model.toDomain(), nil
}

// FindFor returns the earliest certificate the user holds for the course, or nil.
func (r *CertificateRepository) FindFor(ctx context.Context, userID uuid.UUID, courseID string) (*domain.Certificate, error) {
	var model CertificateGorm
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("issued_at").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.toDomain(), nil
}
