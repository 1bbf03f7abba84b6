package handlers

import (
	"net/http"

	"careermate/internal/application/usecase"
	"careermate/internal/domain"
	"careermate/internal/infrastructure/storage"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profile *usecase.ProfileUseCase
}

func NewProfileHandler(profile *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

type updateEmailReq struct {
	NewEmail string `json:"newEmail"`
	Password string `json:"password"`
}

type updatePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SetAvatar takes a multipart upload in the "avatar" field.
func (h *ProfileHandler) SetAvatar(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}
	if fh.Size > storage.MaxAvatarSize {
		respondError(c, domain.ErrFileTooLarge, "Upload failed")
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err, "Upload failed")
		return
	}
	defer f.Close()

	url, err := h.profile.SetAvatar(c, caller.UserID, fh.Header.Get("Content-Type"), f)
	if err != nil {
		respondError(c, err, "Upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarUrl": url})
}

func (h *ProfileHandler) UpdateEmail(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req updateEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing fields")
		return
	}

	if err := h.profile.UpdateEmail(c, caller.UserID, req.NewEmail, req.Password); err != nil {
		respondError(c, err, "Update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email updated successfully"})
}

func (h *ProfileHandler) UpdatePassword(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req updatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing fields")
		return
	}

	if err := h.profile.UpdatePassword(c, caller.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "Update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
