package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"careermate/internal/domain"
	"careermate/internal/infrastructure/repository"
	"careermate/internal/infrastructure/security"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeSessions struct {
	mu        sync.Mutex
	tokens    map[string]string
	deleteErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) SaveRefresh(_ context.Context, userID, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = userID
	return nil
}

func (f *fakeSessions) CheckRefresh(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return "", errors.New("not found")
	}
	return id, nil
}

func (f *fakeSessions) DeleteRefresh(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tokens, token)
	return nil
}

// sequenceCodes hands out codes in order and repeats the last one when exhausted.
type sequenceCodes struct {
	codes []string
	calls int
}

func (s *sequenceCodes) Generate() (string, error) {
	i := s.calls
	if i >= len(s.codes) {
		i = len(s.codes) - 1
	}
	s.calls++
	return s.codes[i], nil
}

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeAvatars struct {
	saved []byte
}

func (f *fakeAvatars) Save(_ context.Context, userID uuid.UUID, contentType string, src io.Reader) (string, error) {
	if contentType != "image/png" {
		return "", domain.ErrInvalidFile
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	f.saved = data
	return "/uploads/avatars/" + userID.String() + ".png", nil
}

type fixture struct {
	store     *repository.MemoryStore
	sessions  *fakeSessions
	hasher    *security.PasswordHasher
	tokens    *security.TokenManager
	auth      *AuthUseCase
	enroll    *EnrollmentUseCase
	progress  *ProgressUseCase
	reviews   *ReviewUseCase
	certs     *CertificateUseCase
	codes     *sequenceCodes
	avatars   *fakeAvatars
	profile   *ProfileUseCase
	generator *fakeGenerator
	assistant *AssistantUseCase
}

func newFixture() *fixture {
	f := &fixture{
		store:     repository.NewMemoryStore(),
		sessions:  newFakeSessions(),
		hasher:    security.NewPasswordHasherWithCost(bcrypt.MinCost),
		tokens:    security.NewTokenManager("access", "refresh", time.Minute, time.Hour),
		codes:     &sequenceCodes{codes: []string{"ABCD1234", "EFGH5678", "IJKL9012"}},
		avatars:   &fakeAvatars{},
		generator: &fakeGenerator{reply: "Photosynthesis turns light into sugar."},
	}
	customers := f.store.Customers()
	f.auth = NewAuthUseCase(f.store.Users(), customers, f.sessions, f.hasher, f.tokens)
	f.enroll = NewEnrollmentUseCase(customers)
	f.progress = NewProgressUseCase(customers, domain.DefaultPassingRatio)
	f.reviews = NewReviewUseCase(customers, f.store.Reviews(), nil, true)
	f.certs = NewCertificateUseCase(customers, f.store.Certificates(), f.codes, CertificatePolicy{
		PassingRatio:    domain.DefaultPassingRatio,
		AllowDuplicates: true,
	})
	f.profile = NewProfileUseCase(f.store.Users(), customers, f.hasher, f.avatars)
	f.assistant = NewAssistantUseCase(f.generator)
	return f
}

// signup registers a user and returns the caller identity.
func (f *fixture) signup(email string) domain.Identity {
	s, err := f.auth.Register(context.Background(), "user-"+email, email, "secret123")
	if err != nil {
		panic(err)
	}
	return domain.Identity{UserID: s.User.ID, Username: s.User.Username}
}

func float(v float64) *float64 { return &v }
