package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"careermate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSummaryCache struct {
	generations map[string]int64
	entries     map[string]domain.ReviewSummary
	invalidated []string
}

func newMapSummaryCache() *mapSummaryCache {
	return &mapSummaryCache{generations: map[string]int64{}, entries: map[string]domain.ReviewSummary{}}
}

func entryKey(courseID string, generation int64) string {
	return fmt.Sprintf("%s/%d", courseID, generation)
}

func (c *mapSummaryCache) Generation(_ context.Context, courseID string) (int64, bool) {
	return c.generations[courseID], true
}

func (c *mapSummaryCache) Get(_ context.Context, courseID string, generation int64) (domain.ReviewSummary, bool) {
	s, ok := c.entries[entryKey(courseID, generation)]
	return s, ok
}

func (c *mapSummaryCache) Set(_ context.Context, courseID string, generation int64, s domain.ReviewSummary) {
	c.entries[entryKey(courseID, generation)] = s
}

func (c *mapSummaryCache) Invalidate(_ context.Context, courseID string) {
	c.generations[courseID]++
	c.invalidated = append(c.invalidated, courseID)
}

// hookedReviews runs afterSummary once, between computing a summary and returning it.
type hookedReviews struct {
	ReviewRepository
	afterSummary func()
}

func (r *hookedReviews) Summary(ctx context.Context, courseID string) (domain.ReviewSummary, error) {
	s, err := r.ReviewRepository.Summary(ctx, courseID)
	if hook := r.afterSummary; hook != nil {
		r.afterSummary = nil
		hook()
	}
	return s, err
}

func TestAddReviewRequiresEnrollment(t *testing.T) {
	f := newFixture()
	caller := f.signup("a@example.com")

	_, err := f.reviews.AddReview(context.Background(), caller, "go-101", 5, "great")
	assert.ErrorIs(t, err, domain.ErrNotEnrolledReview)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestAddReviewRejectsRatingOutOfRange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")
	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.reviews.AddReview(ctx, caller, "go-101", rating, "")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), "rating %d", rating)
	}
}

func TestReviewSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	summary, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSummary{Average: 0, Count: 0}, summary)

	for i, rating := range []int{3, 5} {
		caller := f.signup(fmt.Sprintf("r%d@example.com", i))
		_, err := f.enroll.Enroll(ctx, caller, "go-101")
		require.NoError(t, err)
		_, err = f.reviews.AddReview(ctx, caller, "go-101", rating, "")
		require.NoError(t, err)
	}

	summary, err = f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.Average)
	assert.Equal(t, int64(2), summary.Count)
}

func TestReviewSummaryRounds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")
	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)

	for _, rating := range []int{5, 4, 4} {
		_, err := f.reviews.AddReview(ctx, caller, "go-101", rating, "")
		require.NoError(t, err)
	}

	summary, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, 4.3, summary.Average)
	assert.Equal(t, int64(3), summary.Count)
}

func TestListReviewsNewestFirstCapped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")
	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	f.reviews.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for i := 0; i < 60; i++ {
		_, err := f.reviews.AddReview(ctx, caller, "go-101", 1+i%5, fmt.Sprintf("review %d", i))
		require.NoError(t, err)
	}

	reviews, err := f.reviews.ListReviews(ctx, "go-101")
	require.NoError(t, err)
	require.Len(t, reviews, domain.ReviewListLimit)
	assert.Equal(t, "review 59", reviews[0].Comment)
	assert.Equal(t, "review 10", reviews[len(reviews)-1].Comment)
	for i := 1; i < len(reviews); i++ {
		assert.False(t, reviews[i].CreatedAt.After(reviews[i-1].CreatedAt))
	}

	empty, err := f.reviews.ListReviews(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReviewDuplicatePolicy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")
	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)

	_, err = f.reviews.AddReview(ctx, caller, "go-101", 4, "first")
	require.NoError(t, err)
	_, err = f.reviews.AddReview(ctx, caller, "go-101", 2, "second")
	require.NoError(t, err)

	f.reviews.allowDuplicates = false
	_, err = f.reviews.AddReview(ctx, caller, "go-101", 5, "third")
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestReviewSummaryUsesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cache := newMapSummaryCache()
	f.reviews.cache = cache
	caller := f.signup("a@example.com")
	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)

	_, err = f.reviews.AddReview(ctx, caller, "go-101", 5, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"go-101"}, cache.invalidated)
	assert.Equal(t, int64(1), cache.generations["go-101"])

	summary, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSummary{Average: 5, Count: 1}, cache.entries["go-101/1"])

	cache.entries["go-101/1"] = domain.ReviewSummary{Average: 1, Count: 99}
	cached, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, int64(99), cached.Count)
	assert.NotEqual(t, summary, cached)

	_, err = f.reviews.AddReview(ctx, caller, "go-101", 3, "")
	require.NoError(t, err)
	fresh, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSummary{Average: 4, Count: 2}, fresh)
}

func TestReviewSummaryComputedBeforeWriteIsNotServed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.reviews.cache = newMapSummaryCache()
	reviews := &hookedReviews{ReviewRepository: f.store.Reviews()}
	f.reviews.reviewRepo = reviews
	caller := f.signup("a@example.com")
	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)

	// a review lands while the first summary is in flight
	reviews.afterSummary = func() {
		_, err := f.reviews.AddReview(ctx, caller, "go-101", 5, "")
		require.NoError(t, err)
	}
	inFlight, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, int64(0), inFlight.Count)

	after, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewSummary{Average: 5, Count: 1}, after)
}

func TestReviewDuplicatePolicyUnderConcurrency(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.reviews.allowDuplicates = false
	caller := f.signup("a@example.com")
	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)

	const n = 20
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.reviews.AddReview(ctx, caller, "go-101", 4, "")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
	}
	assert.Equal(t, 1, created)

	summary, err := f.reviews.Summary(ctx, "go-101")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Count)
}
