package repository

import (
	"context"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewGorm struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index"`
	Username  string
	CourseID  string `gorm:"size:128;index:idx_review_course"`
	Rating    int    `gorm:"not null"`
	Comment   string
	CreatedAt time.Time `gorm:"index:idx_review_course"`
	// set only under the one-review-per-course policy; NULLs never collide
	ExclusiveKey *string `gorm:"size:200;uniqueIndex"`
}

func (ReviewGorm) TableName() string {
	return "reviews"
}

func (m *ReviewGorm) toDomain() domain.Review {
	return domain.Review{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		CourseID:  m.CourseID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func toGormReview(review *domain.Review) *ReviewGorm {
	return &ReviewGorm{
		ID:        review.ID,
		UserID:    review.UserID,
		Username:  review.Username,
		CourseID:  review.CourseID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Create(toGormReview(review)).Error
}

func (r *ReviewRepository) CreateExclusive(ctx context.Context, review *domain.Review) error {
	model := toGormReview(review)
	key := exclusiveKey(review.UserID, review.CourseID)
	model.ExclusiveKey = &key

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "exclusive_key"}}, DoNothing: true}).
		Create(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyReviewed
	}
	return nil
}

func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID string, limit int) ([]domain.Review, error) {
	var rows []ReviewGorm
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, rows[i].toDomain())
	}
	return reviews, nil
}

func (r *ReviewRepository) Summary(ctx context.Context, courseID string) (domain.ReviewSummary, error) {
	var result struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&ReviewGorm{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Scan(&result).Error
	if err != nil {
		return domain.ReviewSummary{}, err
	}
	return domain.ReviewSummary{Average: result.Average, Count: result.Count}, nil
}

func (r *ReviewRepository) ExistsFor(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ReviewGorm{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}
