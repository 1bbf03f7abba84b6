package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLessonID     = "main"
	DefaultBookmarkNote = "Bookmark"
	DefaultPassingRatio = 0.7

	maxCourseIDLength = 128
)

// Customer is the per-user learning record: enrolled courses plus progress per course.
type Customer struct {
	UserID          uuid.UUID                  `json:"userId"`
	Username        string                     `json:"username"`
	Email           string                     `json:"email"`
	EnrolledCourses []string                   `json:"enrolledCourses"`
	Progress        map[string]*CourseProgress `json:"progress"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

func (c *Customer) IsEnrolled(courseID string) bool {
	for _, id := range c.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

type CourseProgress struct {
	LastLessonID     string      `json:"lastLessonId,omitempty"`
	LastPosition     float64     `json:"lastPosition"`
	CompletedLessons []string    `json:"completedLessons"`
	Bookmarks        []Bookmark  `json:"bookmarks"`
	Quiz             *QuizResult `json:"quiz,omitempty"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// NewCourseProgress returns an empty sub-record with non-nil collections.
func NewCourseProgress() *CourseProgress {
	return &CourseProgress{
		CompletedLessons: []string{},
		Bookmarks:        []Bookmark{},
	}
}

func (p *CourseProgress) HasCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

type Bookmark struct {
	Note     string    `json:"note"`
	Position float64   `json:"position"`
	At       time.Time `json:"at"`
}

// NewBookmark applies the default note for an empty one.
func NewBookmark(note string, position float64, at time.Time) Bookmark {
	if note == "" {
		note = DefaultBookmarkNote
	}
	return Bookmark{Note: note, Position: position, At: at}
}

type QuizResult struct {
	Score  float64   `json:"score"`
	Total  float64   `json:"total"`
	Passed bool      `json:"passed"`
	At     time.Time `json:"at"`
}

// NewQuizResult derives Passed once, at submission time.
func NewQuizResult(score, total, passingRatio float64, at time.Time) QuizResult {
	return QuizResult{
		Score:  score,
		Total:  total,
		Passed: IsPassing(score, total, passingRatio),
		At:     at,
	}
}

// IsPassing reports score/total >= ratio. A non-positive total never passes.
func IsPassing(score, total, ratio float64) bool {
	if total <= 0 {
		return false
	}
	return score/total >= ratio
}

// ValidateCourseID rejects ids that cannot be used as a progress map key.
func ValidateCourseID(courseID string) error {
	switch {
	case strings.TrimSpace(courseID) == "":
		return NewValidationError("courseId", "Missing courseId")
	case len(courseID) > maxCourseIDLength:
		return NewValidationError("courseId", "courseId is too long")
	case strings.Contains(courseID, "."), strings.HasPrefix(courseID, "$"):
		return NewValidationError("courseId", "courseId contains invalid characters")
	}
	return nil
}

// NormalizeLessonID turns a JSON lesson id (string or number) into its string form.
func NormalizeLessonID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case interface{ String() string }:
		s := id.String()
		return s, s != ""
	}
	return "", false
}

// NumberOf converts a loosely typed JSON number. Missing, non-numeric or
// non-finite values become 0.
func NumberOf(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case interface{ Float64() (float64, error) }:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
