package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsPassing(t *testing.T) {
	tests := []struct {
		score, total float64
		want         bool
	}{
		{7, 10, true},
		{6, 10, false},
		{8, 10, true},
		{10, 10, true},
		{0, 10, false},
		{14, 20, true},
		{0, 0, false},
		{5, 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPassing(tt.score, tt.total, DefaultPassingRatio), "%v/%v", tt.score, tt.total)
	}
}

func TestNewQuizResultKeepsThresholdAtSubmission(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := NewQuizResult(7, 10, 0.8, at)

	assert.False(t, q.Passed)
	assert.Equal(t, 7.0, q.Score)
	assert.Equal(t, 10.0, q.Total)
	assert.Equal(t, at, q.At)
}

func TestNewBookmarkDefaultsNote(t *testing.T) {
	b := NewBookmark("", 0, time.Now())
	assert.Equal(t, "Bookmark", b.Note)
	assert.Equal(t, 0.0, b.Position)

	b = NewBookmark("intro", 42.5, time.Now())
	assert.Equal(t, "intro", b.Note)
	assert.Equal(t, 42.5, b.Position)
}

func TestValidateCourseID(t *testing.T) {
	assert.NoError(t, ValidateCourseID("web-dev-101"))
	assert.Error(t, ValidateCourseID(""))
	assert.Error(t, ValidateCourseID("   "))
	assert.Error(t, ValidateCourseID("a.b"))
	assert.Error(t, ValidateCourseID("$where"))

	err := ValidateCourseID("")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestNormalizeLessonID(t *testing.T) {
	id, ok := NormalizeLessonID("lesson-3")
	assert.True(t, ok)
	assert.Equal(t, "lesson-3", id)

	id, ok = NormalizeLessonID(float64(3))
	assert.True(t, ok)
	assert.Equal(t, "3", id)

	id, ok = NormalizeLessonID(json.Number("12"))
	assert.True(t, ok)
	assert.Equal(t, "12", id)

	_, ok = NormalizeLessonID("")
	assert.False(t, ok)
	_, ok = NormalizeLessonID(nil)
	assert.False(t, ok)
	_, ok = NormalizeLessonID(true)
	assert.False(t, ok)
}

func TestCourseProgressHasCompleted(t *testing.T) {
	p := NewCourseProgress()
	assert.False(t, p.HasCompleted("1"))
	p.CompletedLessons = append(p.CompletedLessons, "1")
	assert.True(t, p.HasCompleted("1"))
}

func TestReviewSummaryRounded(t *testing.T) {
	assert.Equal(t, 4.0, ReviewSummary{Average: 4, Count: 2}.Rounded())
	assert.Equal(t, 3.7, ReviewSummary{Average: 11.0 / 3.0, Count: 3}.Rounded())
	assert.Equal(t, 0.0, ReviewSummary{}.Rounded())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrCustomerNotFound))
	assert.Equal(t, KindForbidden, KindOf(ErrNotEnrolledCert))
	assert.Equal(t, KindUpstream, KindOf(&UpstreamError{Service: "store", Err: assert.AnError}))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}

func TestNumberOf(t *testing.T) {
	assert.Equal(t, 12.5, NumberOf(12.5))
	assert.Equal(t, 30.0, NumberOf("30"))
	assert.Equal(t, 7.0, NumberOf(json.Number("7")))
	assert.Equal(t, 0.0, NumberOf("abc"))
	assert.Equal(t, 0.0, NumberOf(nil))
	assert.Equal(t, 0.0, NumberOf(true))
	assert.Equal(t, 0.0, NumberOf("NaN"))
}
