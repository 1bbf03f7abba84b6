package usecase

import (
	"context"
	"testing"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitQuizBoundary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")

	quiz, err := f.progress.SubmitQuiz(ctx, caller.UserID, "go-101", 7, 10)
	require.NoError(t, err)
	assert.True(t, quiz.Passed)

	quiz, err = f.progress.SubmitQuiz(ctx, caller.UserID, "go-101", 6, 10)
	require.NoError(t, err)
	assert.False(t, quiz.Passed)

	progress, err := f.progress.GetProgress(ctx, caller.UserID, "go-101")
	require.NoError(t, err)
	require.NotNil(t, progress.Quiz)
	assert.Equal(t, 6.0, progress.Quiz.Score)
	assert.False(t, progress.Quiz.Passed)
}

func TestSubmitQuizZeroTotal(t *testing.T) {
	f := newFixture()
	caller := f.signup("a@example.com")

	quiz, err := f.progress.SubmitQuiz(context.Background(), caller.UserID, "go-101", 0, 0)
	require.NoError(t, err)
	assert.False(t, quiz.Passed)
}

func TestProgressRequiresCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stranger := uuid.New()

	_, err := f.progress.SaveProgress(ctx, stranger, "go-101", "l1", 10)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = f.progress.CompleteLesson(ctx, stranger, "go-101", "l1")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = f.progress.SubmitQuiz(ctx, stranger, "go-101", 1, 1)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestGetProgressAbsent(t *testing.T) {
	f := newFixture()
	caller := f.signup("a@example.com")

	progress, err := f.progress.GetProgress(context.Background(), caller.UserID, "go-101")
	require.NoError(t, err)
	assert.Nil(t, progress)

	progress, err = f.progress.GetProgress(context.Background(), uuid.New(), "go-101")
	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestSaveProgressKeepsOtherFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")

	_, err := f.progress.CompleteLesson(ctx, caller.UserID, "go-101", "l1")
	require.NoError(t, err)
	_, err = f.progress.AddBookmark(ctx, caller.UserID, "go-101", "intro", 3)
	require.NoError(t, err)

	progress, err := f.progress.SaveProgress(ctx, caller.UserID, "go-101", "", 42.5)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLessonID, progress.LastLessonID)
	assert.Equal(t, 42.5, progress.LastPosition)
	assert.Equal(t, []string{"l1"}, progress.CompletedLessons)
	assert.Len(t, progress.Bookmarks, 1)
}

func TestCompleteAndUncompleteLesson(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")

	completed, err := f.progress.CompleteLesson(ctx, caller.UserID, "go-101", "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, completed)

	completed, err = f.progress.CompleteLesson(ctx, caller.UserID, "go-101", "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, completed)

	completed, err = f.progress.CompleteLesson(ctx, caller.UserID, "go-101", "l2")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, completed)

	completed, err = f.progress.UncompleteLesson(ctx, caller.UserID, "go-101", "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l2"}, completed)

	completed, err = f.progress.UncompleteLesson(ctx, caller.UserID, "go-101", "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"l2"}, completed)

	_, err = f.progress.CompleteLesson(ctx, caller.UserID, "go-101", "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestAddBookmarkDefaults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.progress.now = func() time.Time { return at }

	bookmarks, err := f.progress.AddBookmark(ctx, caller.UserID, "go-101", "", 0)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, domain.Bookmark{Note: "Bookmark", Position: 0, At: at}, bookmarks[0])

	bookmarks, err = f.progress.AddBookmark(ctx, caller.UserID, "go-101", "loops", 12)
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)
	assert.Equal(t, "loops", bookmarks[1].Note)
}
