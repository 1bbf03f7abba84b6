package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5

	// ReviewListLimit caps how many reviews a course listing returns.
	ReviewListLimit = 50
)

type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"` // snapshot at creation time
	CourseID  string    `json:"courseId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReviewSummary struct {
	Average float64 `json:"avg"`
	Count   int64   `json:"count"`
}

// Rounded returns the average rounded to one decimal place.
func (s ReviewSummary) Rounded() float64 {
	return math.Round(s.Average*10) / 10
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return NewValidationError("rating", "Rating must be between 1 and 5")
	}
	return nil
}
