package domain

import (
	"time"

	"github.com/google/uuid"
)

const CertificateCodeLength = 8

type Certificate struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"` // snapshot at issuance time
	CourseID string    `json:"courseId"`
	IssuedAt time.Time `json:"issuedAt"`
}
