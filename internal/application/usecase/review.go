package usecase

import (
	"context"
	"log"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

type ReviewUseCase struct {
	customerRepo    CustomerRepository
	reviewRepo      ReviewRepository
	cache           SummaryCache
	allowDuplicates bool
	now             func() time.Time
}

// NewReviewUseCase builds the review aggregator. cache may be nil.
func NewReviewUseCase(cr CustomerRepository, rr ReviewRepository, cache SummaryCache, allowDuplicates bool) *ReviewUseCase {
	return &ReviewUseCase{
		customerRepo:    cr,
		reviewRepo:      rr,
		cache:           cache,
		allowDuplicates: allowDuplicates,
		now:             time.Now,
	}
}

func (uc *ReviewUseCase) AddReview(ctx context.Context, caller domain.Identity, courseID string, rating int, comment string) (*domain.Review, error) {
	if err := domain.ValidateCourseID(courseID); err != nil {
		return nil, err
	}
	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}

	enrolled, err := uc.customerRepo.IsEnrolled(ctx, caller.UserID, courseID)
	if err != nil {
		return nil, storeErr("check enrollment", err)
	}
	if !enrolled {
		return nil, domain.ErrNotEnrolledReview
	}

	if !uc.allowDuplicates {
		exists, err := uc.reviewRepo.ExistsFor(ctx, caller.UserID, courseID)
		if err != nil {
			return nil, storeErr("check existing review", err)
		}
		if exists {
			return nil, domain.ErrAlreadyReviewed
		}
	}

	review := &domain.Review{
		ID:        uuid.New(),
		UserID:    caller.UserID,
		Username:  caller.Username,
		CourseID:  courseID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: uc.now(),
	}
	if uc.allowDuplicates {
		err = uc.reviewRepo.Create(ctx, review)
	} else {
		err = uc.reviewRepo.CreateExclusive(ctx, review)
	}
	if err != nil {
		return nil, storeErr("create review", err)
	}
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, courseID)
	}

	log.Printf("review added: course=%s rating=%d user=%s", courseID, rating, caller.UserID)
	return review, nil
}

// ListReviews returns the newest reviews of a course, at most domain.ReviewListLimit.
func (uc *ReviewUseCase) ListReviews(ctx context.Context, courseID string) ([]domain.Review, error) {
	reviews, err := uc.reviewRepo.ListByCourse(ctx, courseID, domain.ReviewListLimit)
	if err != nil {
		return nil, storeErr("list reviews", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (uc *ReviewUseCase) Summary(ctx context.Context, courseID string) (domain.ReviewSummary, error) {
	var (
		generation int64
		cached     bool
	)
	if uc.cache != nil {
		generation, cached = uc.cache.Generation(ctx, courseID)
	}
	if cached {
		if summary, ok := uc.cache.Get(ctx, courseID, generation); ok {
			return summary, nil
		}
	}

	summary, err := uc.reviewRepo.Summary(ctx, courseID)
	if err != nil {
		return domain.ReviewSummary{}, storeErr("review summary", err)
	}
	summary.Average = summary.Rounded()

	if cached {
		uc.cache.Set(ctx, courseID, generation, summary)
	}
	return summary, nil
}
