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

type CustomerGorm struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"size:50"`
	Email     string    `gorm:"index;size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CustomerGorm) TableName() string {
	return "customers"
}

type EnrollmentGorm struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID  string    `gorm:"primaryKey;size:128"`
	CreatedAt time.Time
}

func (EnrollmentGorm) TableName() string {
	return "enrollments"
}

// ProgressGorm is one course sub-record. The quiz columns are all null until the first attempt.
type ProgressGorm struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID     string    `gorm:"primaryKey;size:128"`
	LastLessonID string
	LastPosition float64
	QuizScore    *float64
	QuizTotal    *float64
	QuizPassed   *bool
	QuizAt       *time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (ProgressGorm) TableName() string {
	return "course_progress"
}

type CompletedLessonGorm struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_completed_course"`
	CourseID  string    `gorm:"primaryKey;size:128;index:idx_completed_course"`
	LessonID  string    `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (CompletedLessonGorm) TableName() string {
	return "completed_lessons"
}

type BookmarkGorm struct {
	ID       uint      `gorm:"primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;index:idx_bookmark_course"`
	CourseID string    `gorm:"size:128;index:idx_bookmark_course"`
	Note     string
	Position float64
	At       time.Time
}

func (BookmarkGorm) TableName() string {
	return "bookmarks"
}

var progressKey = []clause.Column{{Name: "user_id"}, {Name: "course_id"}}

// CustomerRepository stores customers in normalized tables. Each mutation runs in one
// transaction that locks the customer row, so concurrent writers never lose each other's updates.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Ensure(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createCustomerIfMissing(tx, customer); err != nil {
			return err
		}
		for _, courseID := range customer.EnrolledCourses {
			if err := addEnrollment(tx, customer.UserID, courseID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, customer.UserID)
}

func (r *CustomerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error) {
	db := r.db.WithContext(ctx)

	var model CustomerGorm
	if err := db.First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}

	courses, err := listEnrollments(db, userID)
	if err != nil {
		return nil, err
	}
	progress, err := loadProgress(db, userID, "")
	if err != nil {
		return nil, err
	}

	return &domain.Customer{
		UserID:          model.UserID,
		Username:        model.Username,
		Email:           model.Email,
		EnrolledCourses: courses,
		Progress:        progress,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}, nil
}

func (r *CustomerRepository) UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error {
	return r.db.WithContext(ctx).Model(&CustomerGorm{}).
		Where("user_id = ?", userID).
		Update("email", email).Error
}

func (r *CustomerRepository) AddEnrollment(ctx context.Context, seed *domain.Customer, courseID string) ([]string, error) {
	var courses []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createCustomerIfMissing(tx, seed); err != nil {
			return err
		}
		if err := addEnrollment(tx, seed.UserID, courseID); err != nil {
			return err
		}
		var err error
		courses, err = listEnrollments(tx, seed.UserID)
		return err
	})
	return courses, err
}

func (r *CustomerRepository) RemoveEnrollment(ctx context.Context, userID uuid.UUID, courseID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&EnrollmentGorm{}).Error
}

func (r *CustomerRepository) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return listEnrollments(r.db.WithContext(ctx), userID)
}

func (r *CustomerRepository) IsEnrolled(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&EnrollmentGorm{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) GetProgress(ctx context.Context, userID uuid.UUID, courseID string) (*domain.CourseProgress, error) {
	progress, err := loadProgress(r.db.WithContext(ctx), userID, courseID)
	if err != nil {
		return nil, err
	}
	return progress[courseID], nil
}

func (r *CustomerRepository) SaveResumePoint(ctx context.Context, userID uuid.UUID, courseID, lessonID string, position float64, at time.Time) (*domain.CourseProgress, error) {
	var out *domain.CourseProgress
	err := r.mutate(ctx, userID, at, func(tx *gorm.DB) error {
		row := ProgressGorm{UserID: userID, CourseID: courseID, LastLessonID: lessonID, LastPosition: position, UpdatedAt: at}
		err := tx.Clauses(clause.OnConflict{
			Columns:   progressKey,
			DoUpdates: clause.AssignmentColumns([]string{"last_lesson_id", "last_position", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		progress, err := loadProgress(tx, userID, courseID)
		out = progress[courseID]
		return err
	})
	return out, err
}

func (r *CustomerRepository) AddCompletedLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error) {
	var out []string
	err := r.mutate(ctx, userID, at, func(tx *gorm.DB) error {
		if err := touchProgress(tx, userID, courseID, at); err != nil {
			return err
		}
		lesson := CompletedLessonGorm{UserID: userID, CourseID: courseID, LessonID: lessonID, CreatedAt: at}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lesson).Error; err != nil {
			return err
		}
		var err error
		out, err = completedLessons(tx, userID, courseID)
		return err
	})
	return out, err
}

func (r *CustomerRepository) RemoveCompletedLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error) {
	var out []string
	err := r.mutate(ctx, userID, at, func(tx *gorm.DB) error {
		if err := touchProgress(tx, userID, courseID, at); err != nil {
			return err
		}
		err := tx.Where("user_id = ? AND course_id = ? AND lesson_id = ?", userID, courseID, lessonID).
			Delete(&CompletedLessonGorm{}).Error
		if err != nil {
			return err
		}
		out, err = completedLessons(tx, userID, courseID)
		return err
	})
	return out, err
}

func (r *CustomerRepository) AppendBookmark(ctx context.Context, userID uuid.UUID, courseID string, bookmark domain.Bookmark) ([]domain.Bookmark, error) {
	var out []domain.Bookmark
	err := r.mutate(ctx, userID, bookmark.At, func(tx *gorm.DB) error {
		if err := touchProgress(tx, userID, courseID, bookmark.At); err != nil {
			return err
		}
		row := BookmarkGorm{UserID: userID, CourseID: courseID, Note: bookmark.Note, Position: bookmark.Position, At: bookmark.At}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		var err error
		out, err = bookmarks(tx, userID, courseID)
		return err
	})
	return out, err
}

func (r *CustomerRepository) SetQuizResult(ctx context.Context, userID uuid.UUID, courseID string, quiz domain.QuizResult) error {
	return r.mutate(ctx, userID, quiz.At, func(tx *gorm.DB) error {
		row := ProgressGorm{
			UserID:     userID,
			CourseID:   courseID,
			QuizScore:  &quiz.Score,
			QuizTotal:  &quiz.Total,
			QuizPassed: &quiz.Passed,
			QuizAt:     &quiz.At,
			UpdatedAt:  quiz.At,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   progressKey,
			DoUpdates: clause.AssignmentColumns([]string{"quiz_score", "quiz_total", "quiz_passed", "quiz_at", "updated_at"}),
		}).Create(&row).Error
	})
}

// mutate locks the customer row for the duration of fn and stamps its updated_at.
func (r *CustomerRepository) mutate(ctx context.Context, userID uuid.UUID, at time.Time, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer CustomerGorm
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&customer, "user_id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCustomerNotFound
			}
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Model(&CustomerGorm{}).Where("user_id = ?", userID).Update("updated_at", at).Error
	})
}

func createCustomerIfMissing(tx *gorm.DB, c *domain.Customer) error {
	model := CustomerGorm{UserID: c.UserID, Username: c.Username, Email: c.Email}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

func addEnrollment(tx *gorm.DB, userID uuid.UUID, courseID string) error {
	row := EnrollmentGorm{UserID: userID, CourseID: courseID}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func listEnrollments(db *gorm.DB, userID uuid.UUID) ([]string, error) {
	courses := []string{}
	err := db.Model(&EnrollmentGorm{}).
		Where("user_id = ?", userID).
		Order("created_at, course_id").
		Pluck("course_id", &courses).Error
	return courses, err
}

// touchProgress creates the course sub-record if needed and bumps its updated_at.
func touchProgress(tx *gorm.DB, userID uuid.UUID, courseID string, at time.Time) error {
	row := ProgressGorm{UserID: userID, CourseID: courseID, UpdatedAt: at}
	return tx.Clauses(clause.OnConflict{
		Columns:   progressKey,
		DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": at}),
	}).Create(&row).Error
}

func completedLessons(db *gorm.DB, userID uuid.UUID, courseID string) ([]string, error) {
	ids := []string{}
	err := db.Model(&CompletedLessonGorm{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at, lesson_id").
		Pluck("lesson_id", &ids).Error
	return ids, err
}

func bookmarks(db *gorm.DB, userID uuid.UUID, courseID string) ([]domain.Bookmark, error) {
	var rows []BookmarkGorm
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Bookmark, 0, len(rows))
	for _, b := range rows {
		out = append(out, domain.Bookmark{Note: b.Note, Position: b.Position, At: b.At})
	}
	return out, nil
}

// loadProgress assembles course sub-records from their rows. An empty courseID loads every course.
func loadProgress(db *gorm.DB, userID uuid.UUID, courseID string) (map[string]*domain.CourseProgress, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if courseID != "" {
			q = q.Where("course_id = ?", courseID)
		}
		return q
	}

	var rows []ProgressGorm
	if err := db.Scopes(scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]*domain.CourseProgress, len(rows))
	for _, row := range rows {
		p := domain.NewCourseProgress()
		p.LastLessonID = row.LastLessonID
		p.LastPosition = row.LastPosition
		p.UpdatedAt = row.UpdatedAt
		if row.QuizPassed != nil {
			quiz := domain.QuizResult{Passed: *row.QuizPassed}
			if row.QuizScore != nil {
				quiz.Score = *row.QuizScore
			}
			if row.QuizTotal != nil {
				quiz.Total = *row.QuizTotal
			}
			if row.QuizAt != nil {
				quiz.At = *row.QuizAt
			}
			p.Quiz = &quiz
		}
		out[row.CourseID] = p
	}
	if len(out) == 0 {
		return out, nil
	}

	var lessons []CompletedLessonGorm
	if err := db.Scopes(scope).Order("created_at, lesson_id").Find(&lessons).Error; err != nil {
		return nil, err
	}
	for _, l := range lessons {
		if p, ok := out[l.CourseID]; ok {
			p.CompletedLessons = append(p.CompletedLessons, l.LessonID)
		}
	}

	var marks []BookmarkGorm
	if err := db.Scopes(scope).Order("id").Find(&marks).Error; err != nil {
		return nil, err
	}
	for _, b := range marks {
		if p, ok := out[b.CourseID]; ok {
			p.Bookmarks = append(p.Bookmarks, domain.Bookmark{Note: b.Note, Position: b.Position, At: b.At})
		}
	}
	return out, nil
}
