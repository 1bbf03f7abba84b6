package usecase

import (
	"context"
	"io"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

// CustomerRepository owns the Customer record and its embedded per-course progress.
// Every progress mutation is applied atomically by the store and returns
// domain.ErrCustomerNotFound when the customer does not exist.
type CustomerRepository interface {
	// Ensure creates the customer if absent and returns the stored record.
	Ensure(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error)
	UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error

	// AddEnrollment upserts the customer from seed and adds courseID to its enrolled set.
	AddEnrollment(ctx context.Context, seed *domain.Customer, courseID string) ([]string, error)
	RemoveEnrollment(ctx context.Context, userID uuid.UUID, courseID string) error
	ListEnrollments(ctx context.Context, userID uuid.UUID) ([]string, error)
	IsEnrolled(ctx context.Context, userID uuid.UUID, courseID string) (bool, error)

	// GetProgress returns nil, nil when there is no sub-record for the course.
	GetProgress(ctx context.Context, userID uuid.UUID, courseID string) (*domain.CourseProgress, error)
	SaveResumePoint(ctx context.Context, userID uuid.UUID, courseID, lessonID string, position float64, at time.Time) (*domain.CourseProgress, error)
	AddCompletedLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error)
	RemoveCompletedLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error)
	AppendBookmark(ctx context.Context, userID uuid.UUID, courseID string, bookmark domain.Bookmark) ([]domain.Bookmark, error)
	SetQuizResult(ctx context.Context, userID uuid.UUID, courseID string, quiz domain.QuizResult) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	// CreateExclusive inserts the review unless the store already holds an exclusive
	// review by the same user for the course, in which case it returns domain.ErrAlreadyReviewed.
	CreateExclusive(ctx context.Context, review *domain.Review) error
	ListByCourse(ctx context.Context, courseID string, limit int) ([]domain.Review, error)
	Summary(ctx context.Context, courseID string) (domain.ReviewSummary, error)
	ExistsFor(ctx context.Context, userID uuid.UUID, courseID string) (bool, error)
}

type CertificateRepository interface {
	// Create returns domain.ErrDuplicateCode when the code is already taken.
	Create(ctx context.Context, cert *domain.Certificate) error
	// CreateExclusive additionally returns domain.ErrCertificateExists when the user
	// already holds an exclusive certificate for the course.
	CreateExclusive(ctx context.Context, cert *domain.Certificate) error
	GetByCode(ctx context.Context, code string) (*domain.Certificate, error)
	// FindFor returns nil, nil when the user holds no certificate for the course.
	FindFor(ctx context.Context, userID uuid.UUID, courseID string) (*domain.Certificate, error)
}

// SessionStore keeps refresh tokens alive between requests.
type SessionStore interface {
	SaveRefresh(ctx context.Context, userID, refreshToken string, ttl time.Duration) error
	CheckRefresh(ctx context.Context, refreshToken string) (string, error)
	DeleteRefresh(ctx context.Context, refreshToken string) error
}

// SummaryCache is an optional read-through cache for review summaries. Entries are
// keyed by a per-course generation; Invalidate advances it, so a summary computed
// before a write can only land under a generation nobody reads any more.
type SummaryCache interface {
	// Generation reports false when the cache cannot be used for this call.
	Generation(ctx context.Context, courseID string) (int64, bool)
	Get(ctx context.Context, courseID string, generation int64) (domain.ReviewSummary, bool)
	Set(ctx context.Context, courseID string, generation int64, summary domain.ReviewSummary)
	Invalidate(ctx context.Context, courseID string)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenManager interface {
	Generate(userID, username string) (access string, refresh string, err error)
	ValidateAccessToken(token string) (domain.Identity, error)
	ValidateRefreshToken(token string) (domain.Identity, error)
	RefreshTTL() time.Duration
}

type CodeGenerator interface {
	Generate() (string, error)
}

// TextGenerator is the generative-text collaborator behind the study assistant.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AvatarStorage interface {
	Save(ctx context.Context, userID uuid.UUID, contentType string, src io.Reader) (url string, err error)
}
