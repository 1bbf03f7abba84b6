package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

type AuthUseCase struct {
	userRepo     UserRepository
	customerRepo CustomerRepository
	sessions     SessionStore
	hasher       PasswordHasher
	tokenManager TokenManager
}

func NewAuthUseCase(
	ur UserRepository,
	cr CustomerRepository,
	ss SessionStore,
	h PasswordHasher,
	tm TokenManager,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     ur,
		customerRepo: cr,
		sessions:     ss,
		hasher:       h,
		tokenManager: tm,
	}
}

// Session is the result of a successful signup, login or refresh.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (uc *AuthUseCase) Register(ctx context.Context, username, email, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, domain.NewValidationError("", "Missing required fields")
	}

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, storeErr("find user by email", err)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, storeErr("create user", err)
	}

	if err := uc.ensureCustomer(ctx, user); err != nil {
		return nil, err
	}
	return uc.newSession(ctx, user)
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storeErr("find user by email", err)
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.ensureCustomer(ctx, user); err != nil {
		return nil, err
	}
	return uc.newSession(ctx, user)
}

func (uc *AuthUseCase) Refresh(ctx context.Context, oldRefreshToken string) (*Session, error) {
	identity, err := uc.tokenManager.ValidateRefreshToken(oldRefreshToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	cachedID, err := uc.sessions.CheckRefresh(ctx, oldRefreshToken)
	if err != nil || cachedID != identity.UserID.String() {
		return nil, domain.ErrTokenRevoked
	}
	// the old token must be gone before a new pair is handed out
	if err := uc.sessions.DeleteRefresh(ctx, oldRefreshToken); err != nil {
		log.Printf("refresh: revoke old token for %s: %v", identity.UserID, err)
		return nil, &domain.UpstreamError{Service: "sessions", Err: err}
	}

	user, err := uc.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, storeErr("find user by id", err)
	}
	return uc.newSession(ctx, user)
}

func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return uc.sessions.DeleteRefresh(ctx, refreshToken)
}

func (uc *AuthUseCase) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr("find user by id", err)
	}
	return user, nil
}

func (uc *AuthUseCase) ValidateAccess(token string) (domain.Identity, error) {
	identity, err := uc.tokenManager.ValidateAccessToken(token)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return identity, nil
}

// ensureCustomer creates the learning record on the first auth event; later calls are no-ops.
func (uc *AuthUseCase) ensureCustomer(ctx context.Context, user *domain.User) error {
	_, err := uc.customerRepo.Ensure(ctx, &domain.Customer{
		UserID:          user.ID,
		Username:        user.Username,
		Email:           user.Email,
		EnrolledCourses: []string{},
		Progress:        map[string]*domain.CourseProgress{},
	})
	if err != nil {
		return storeErr("ensure customer", err)
	}
	return nil
}

func (uc *AuthUseCase) newSession(ctx context.Context, user *domain.User) (*Session, error) {
	access, refresh, err := uc.tokenManager.Generate(user.ID.String(), user.Username)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.SaveRefresh(ctx, user.ID.String(), refresh, uc.tokenManager.RefreshTTL()); err != nil {
		return nil, &domain.UpstreamError{Service: "session store", Err: err}
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
