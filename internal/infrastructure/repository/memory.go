package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps every entity in process memory. It backs local development
// (STORAGE_DRIVER=memory) and the test suites.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]domain.User
	customers    map[uuid.UUID]*domain.Customer
	reviews      []domain.Review
	certificates map[string]domain.Certificate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]domain.User),
		customers:    make(map[uuid.UUID]*domain.Customer),
		certificates: make(map[string]domain.Certificate),
	}
}

func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s} }

func (s *MemoryStore) Customers() *MemoryCustomerRepository { return &MemoryCustomerRepository{s} }

func (s *MemoryStore) Reviews() *MemoryReviewRepository { return &MemoryReviewRepository{s} }

func (s *MemoryStore) Certificates() *MemoryCertificateRepository {
	return &MemoryCertificateRepository{s}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// === USERS ===

type MemoryUserRepository struct{ s *MemoryStore }

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MemoryUserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return r.update(id, func(u *domain.User) { u.Email = email })
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(u *domain.User) { u.Password = passwordHash })
}

func (r *MemoryUserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	return r.update(id, func(u *domain.User) { u.AvatarURL = avatarURL })
}

func (r *MemoryUserRepository) update(id uuid.UUID, fn func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}

// === CUSTOMERS ===

type MemoryCustomerRepository struct{ s *MemoryStore }

func (r *MemoryCustomerRepository) Ensure(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyCustomer(r.s.ensure(customer)), nil
}

func (r *MemoryCustomerRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[userID]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return copyCustomer(c), nil
}

func (r *MemoryCustomerRepository) UpdateEmail(_ context.Context, userID uuid.UUID, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.customers[userID]; ok {
		c.Email = email
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (r *MemoryCustomerRepository) AddEnrollment(_ context.Context, seed *domain.Customer, courseID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.s.ensure(seed)
	if !c.IsEnrolled(courseID) {
		c.EnrolledCourses = append(c.EnrolledCourses, courseID)
		c.UpdatedAt = time.Now()
	}
	return append([]string{}, c.EnrolledCourses...), nil
}

func (r *MemoryCustomerRepository) RemoveEnrollment(_ context.Context, userID uuid.UUID, courseID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[userID]
	if !ok {
		return nil
	}
	c.EnrolledCourses = removeString(c.EnrolledCourses, courseID)
	return nil
}

func (r *MemoryCustomerRepository) ListEnrollments(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[userID]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, c.EnrolledCourses...), nil
}

func (r *MemoryCustomerRepository) IsEnrolled(_ context.Context, userID uuid.UUID, courseID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[userID]
	return ok && c.IsEnrolled(courseID), nil
}

func (r *MemoryCustomerRepository) GetProgress(_ context.Context, userID uuid.UUID, courseID string) (*domain.CourseProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[userID]
	if !ok {
		return nil, nil
	}
	p, ok := c.Progress[courseID]
	if !ok {
		return nil, nil
	}
	return copyProgress(p), nil
}

func (r *MemoryCustomerRepository) SaveResumePoint(_ context.Context, userID uuid.UUID, courseID, lessonID string, position float64, at time.Time) (*domain.CourseProgress, error) {
	var out *domain.CourseProgress
	err := r.mutate(userID, courseID, at, func(p *domain.CourseProgress) {
		p.LastLessonID = lessonID
		p.LastPosition = position
		out = copyProgress(p)
	})
	return out, err
}

func (r *MemoryCustomerRepository) AddCompletedLesson(_ context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error) {
	var out []string
	err := r.mutate(userID, courseID, at, func(p *domain.CourseProgress) {
		if !p.HasCompleted(lessonID) {
			p.CompletedLessons = append(p.CompletedLessons, lessonID)
		}
		out = append([]string{}, p.CompletedLessons...)
	})
	return out, err
}

func (r *MemoryCustomerRepository) RemoveCompletedLesson(_ context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error) {
	var out []string
	err := r.mutate(userID, courseID, at, func(p *domain.CourseProgress) {
		p.CompletedLessons = removeString(p.CompletedLessons, lessonID)
		out = append([]string{}, p.CompletedLessons...)
	})
	return out, err
}

func (r *MemoryCustomerRepository) AppendBookmark(_ context.Context, userID uuid.UUID, courseID string, bookmark domain.Bookmark) ([]domain.Bookmark, error) {
	var out []domain.Bookmark
	err := r.mutate(userID, courseID, bookmark.At, func(p *domain.CourseProgress) {
		p.Bookmarks = append(p.Bookmarks, bookmark)
		out = append([]domain.Bookmark{}, p.Bookmarks...)
	})
	return out, err
}

func (r *MemoryCustomerRepository) SetQuizResult(_ context.Context, userID uuid.UUID, courseID string, quiz domain.QuizResult) error {
	return r.mutate(userID, courseID, quiz.At, func(p *domain.CourseProgress) {
		q := quiz
		p.Quiz = &q
	})
}

// mutate applies fn to the course sub-record under the store lock, creating the sub-record if needed.
func (r *MemoryCustomerRepository) mutate(userID uuid.UUID, courseID string, at time.Time, fn func(*domain.CourseProgress)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[userID]
	if !ok {
		return domain.ErrCustomerNotFound
	}
	if c.Progress == nil {
		c.Progress = map[string]*domain.CourseProgress{}
	}
	p, ok := c.Progress[courseID]
	if !ok {
		p = domain.NewCourseProgress()
		c.Progress[courseID] = p
	}
	p.UpdatedAt = at
	fn(p)
	c.UpdatedAt = at
	return nil
}

// ensure must be called with the lock held.
func (s *MemoryStore) ensure(seed *domain.Customer) *domain.Customer {
	if c, ok := s.customers[seed.UserID]; ok {
		return c
	}
	now := time.Now()
	c := &domain.Customer{
		UserID:          seed.UserID,
		Username:        seed.Username,
		Email:           seed.Email,
		EnrolledCourses: append([]string{}, seed.EnrolledCourses...),
		Progress:        map[string]*domain.CourseProgress{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.customers[seed.UserID] = c
	return c
}

// === REVIEWS ===

type MemoryReviewRepository struct{ s *MemoryStore }

func (r *MemoryReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reviews = append(r.s.reviews, *review)
	return nil
}

func (r *MemoryReviewRepository) CreateExclusive(_ context.Context, review *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.UserID == review.UserID && rv.CourseID == review.CourseID {
			return domain.ErrAlreadyReviewed
		}
	}
	r.s.reviews = append(r.s.reviews, *review)
	return nil
}

func (r *MemoryReviewRepository) ListByCourse(_ context.Context, courseID string, limit int) ([]domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Review{}
	// newest insertions first so equal timestamps keep a stable newest-first order
	for i := len(r.s.reviews) - 1; i >= 0; i-- {
		if r.s.reviews[i].CourseID == courseID {
			out = append(out, r.s.reviews[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryReviewRepository) Summary(_ context.Context, courseID string) (domain.ReviewSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum, count int64
	for _, rv := range r.s.reviews {
		if rv.CourseID == courseID {
			sum += int64(rv.Rating)
			count++
		}
	}
	if count == 0 {
		return domain.ReviewSummary{}, nil
	}
	return domain.ReviewSummary{Average: float64(sum) / float64(count), Count: count}, nil
}

func (r *MemoryReviewRepository) ExistsFor(_ context.Context, userID uuid.UUID, courseID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rv := range r.s.reviews {
		if rv.UserID == userID && rv.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

// === CERTIFICATES ===

type MemoryCertificateRepository struct{ s *MemoryStore }

func (r *MemoryCertificateRepository) Create(_ context.Context, cert *domain.Certificate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.certificates[cert.Code]; taken {
		return domain.ErrDuplicateCode
	}
	r.s.certificates[cert.Code] = *cert
	return nil
}

func (r *MemoryCertificateRepository) CreateExclusive(_ context.Context, cert *domain.Certificate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.certificates {
		if c.UserID == cert.UserID && c.CourseID == cert.CourseID {
			return domain.ErrCertificateExists
		}
	}
	if _, taken := r.s.certificates[cert.Code]; taken {
		return domain.ErrDuplicateCode
	}
	r.s.certificates[cert.Code] = *cert
	return nil
}

func (r *MemoryCertificateRepository) GetByCode(_ context.Context, code string) (*domain.Certificate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.certificates[code]
	if !ok {
		return nil, domain.ErrCertificateNotFound
	}
	return &c, nil
}

func (r *MemoryCertificateRepository) FindFor(_ context.Context, userID uuid.UUID, courseID string) (*domain.Certificate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *domain.Certificate
	for _, c := range r.s.certificates {
		if c.UserID == userID && c.CourseID == courseID {
			if found == nil || c.IssuedAt.Before(found.IssuedAt) {
				cc := c
				found = &cc
			}
		}
	}
	return found, nil
}

func copyCustomer(c *domain.Customer) *domain.Customer {
	out := *c
	out.EnrolledCourses = append([]string{}, c.EnrolledCourses...)
	out.Progress = make(map[string]*domain.CourseProgress, len(c.Progress))
	for id, p := range c.Progress {
		out.Progress[id] = copyProgress(p)
	}
	return &out
}

func copyProgress(p *domain.CourseProgress) *domain.CourseProgress {
	out := *p
	out.CompletedLessons = append([]string{}, p.CompletedLessons...)
	out.Bookmarks = append([]domain.Bookmark{}, p.Bookmarks...)
	if p.Quiz != nil {
		q := *p.Quiz
		out.Quiz = &q
	}
	return &out
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
