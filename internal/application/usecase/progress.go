package usecase

import (
	"context"
	"log"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

// ProgressUseCase owns the per-course progress sub-record of a customer.
type ProgressUseCase struct {
	customerRepo CustomerRepository
	passingRatio float64
	now          func() time.Time
}

func NewProgressUseCase(cr CustomerRepository, passingRatio float64) *ProgressUseCase {
	if passingRatio <= 0 {
		passingRatio = domain.DefaultPassingRatio
	}
	return &ProgressUseCase{customerRepo: cr, passingRatio: passingRatio, now: time.Now}
}

func (uc *ProgressUseCase) GetProgress(ctx context.Context, userID uuid.UUID, courseID string) (*domain.CourseProgress, error) {
	progress, err := uc.customerRepo.GetProgress(ctx, userID, courseID)
	if err != nil {
		return nil, storeErr("get progress", err)
	}
	return progress, nil
}

// SaveProgress moves the resume point. Completed lessons, bookmarks and the quiz are untouched.
func (uc *ProgressUseCase) SaveProgress(ctx context.Context, userID uuid.UUID, courseID, lastLessonID string, lastPosition float64) (*domain.CourseProgress, error) {
	if err := domain.ValidateCourseID(courseID); err != nil {
		return nil, err
	}
	if lastLessonID == "" {
		lastLessonID = domain.DefaultLessonID
	}

	progress, err := uc.customerRepo.SaveResumePoint(ctx, userID, courseID, lastLessonID, lastPosition, uc.now())
	if err != nil {
		return nil, storeErr("save resume point", err)
	}
	return progress, nil
}

func (uc *ProgressUseCase) CompleteLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string) ([]string, error) {
	if err := validateLesson(courseID, lessonID); err != nil {
		return nil, err
	}
	completed, err := uc.customerRepo.AddCompletedLesson(ctx, userID, courseID, lessonID, uc.now())
	if err != nil {
		return nil, storeErr("complete lesson", err)
	}
	return completed, nil
}

func (uc *ProgressUseCase) UncompleteLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string) ([]string, error) {
	if err := validateLesson(courseID, lessonID); err != nil {
		return nil, err
	}
	completed, err := uc.customerRepo.RemoveCompletedLesson(ctx, userID, courseID, lessonID, uc.now())
	if err != nil {
		return nil, storeErr("uncomplete lesson", err)
	}
	return completed, nil
}

func (uc *ProgressUseCase) AddBookmark(ctx context.Context, userID uuid.UUID, courseID, note string, position float64) ([]domain.Bookmark, error) {
	if err := domain.ValidateCourseID(courseID); err != nil {
		return nil, err
	}
	bookmarks, err := uc.customerRepo.AppendBookmark(ctx, userID, courseID, domain.NewBookmark(note, position, uc.now()))
	if err != nil {
		return nil, storeErr("append bookmark", err)
	}
	return bookmarks, nil
}

// SubmitQuiz records the attempt, replacing any earlier one.
func (uc *ProgressUseCase) SubmitQuiz(ctx context.Context, userID uuid.UUID, courseID string, score, total float64) (domain.QuizResult, error) {
	if err := domain.ValidateCourseID(courseID); err != nil {
		return domain.QuizResult{}, err
	}

	quiz := domain.NewQuizResult(score, total, uc.passingRatio, uc.now())
	if err := uc.customerRepo.SetQuizResult(ctx, userID, courseID, quiz); err != nil {
		return domain.QuizResult{}, storeErr("set quiz result", err)
	}

	log.Printf("quiz submitted: user=%s course=%s score=%v/%v passed=%t", userID, courseID, score, total, quiz.Passed)
	return quiz, nil
}

func validateLesson(courseID, lessonID string) error {
	if err := domain.ValidateCourseID(courseID); err != nil {
		return err
	}
	if lessonID == "" {
		return domain.NewValidationError("lessonId", "Missing fields")
	}
	return nil
}
