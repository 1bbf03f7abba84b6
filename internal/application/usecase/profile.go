package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

const minPasswordLength = 6

type ProfileUseCase struct {
	userRepo     UserRepository
	customerRepo CustomerRepository
	hasher       PasswordHasher
	avatars      AvatarStorage
}

func NewProfileUseCase(ur UserRepository, cr CustomerRepository, h PasswordHasher, as AvatarStorage) *ProfileUseCase {
	return &ProfileUseCase{userRepo: ur, customerRepo: cr, hasher: h, avatars: as}
}

// UpdateEmail changes the login email after re-checking the password and mirrors it onto the customer.
func (uc *ProfileUseCase) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail, password string) error {
	newEmail = strings.TrimSpace(newEmail)
	if newEmail == "" || password == "" {
		return domain.NewValidationError("", "Missing fields")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return storeErr("find user by id", err)
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return domain.ErrIncorrectPassword
	}

	existing, err := uc.userRepo.GetByEmail(ctx, newEmail)
	switch {
	case err == nil && existing.ID != userID:
		return domain.ErrEmailInUse
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return storeErr("find user by email", err)
	}

	if err := uc.userRepo.UpdateEmail(ctx, userID, newEmail); err != nil {
		return storeErr("update user email", err)
	}
	if err := uc.customerRepo.UpdateEmail(ctx, userID, newEmail); err != nil {
		return storeErr("update customer email", err)
	}
	return nil
}

func (uc *ProfileUseCase) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return domain.NewValidationError("", "Missing fields")
	}
	if len(newPassword) < minPasswordLength {
		return domain.NewValidationError("newPassword", "Password must be at least 6 characters")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return storeErr("find user by id", err)
	}
	if err := uc.hasher.Compare(user.Password, currentPassword); err != nil {
		return &domain.Error{Kind: domain.KindUnauthorized, Message: "Current password is incorrect"}
	}

	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := uc.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return storeErr("update password", err)
	}
	return nil
}

// SetAvatar stores the uploaded image and points the user's avatar at it.
func (uc *ProfileUseCase) SetAvatar(ctx context.Context, userID uuid.UUID, contentType string, src io.Reader) (string, error) {
	url, err := uc.avatars.Save(ctx, userID, contentType, src)
	if err != nil {
		return "", err
	}
	if err := uc.userRepo.UpdateAvatar(ctx, userID, url); err != nil {
		return "", storeErr("update avatar", err)
	}
	return url, nil
}
