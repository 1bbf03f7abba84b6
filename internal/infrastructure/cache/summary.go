package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"careermate/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ReviewSummaryCache caches per-course rating summaries. Each course has a
// generation counter that Invalidate increments; summaries are stored under the
// generation they were computed against. Redis failures are logged and treated
// as cache misses.
type ReviewSummaryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewReviewSummaryCache(client redis.Cmdable, ttl time.Duration) *ReviewSummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReviewSummaryCache{client: client, ttl: ttl}
}

// Generation returns 0 for a course that was never invalidated.
func (c *ReviewSummaryCache) Generation(ctx context.Context, courseID string) (int64, bool) {
	gen, err := c.client.Get(ctx, generationKey(courseID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		log.Printf("review summary cache generation %s: %v", courseID, err)
		return 0, false
	}
	return gen, true
}

func (c *ReviewSummaryCache) Get(ctx context.Context, courseID string, generation int64) (domain.ReviewSummary, bool) {
	val, err := c.client.Get(ctx, summaryKey(courseID, generation)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("review summary cache get %s: %v", courseID, err)
		}
		return domain.ReviewSummary{}, false
	}

	var summary domain.ReviewSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		return domain.ReviewSummary{}, false
	}
	return summary, true
}

func (c *ReviewSummaryCache) Set(ctx context.Context, courseID string, generation int64, summary domain.ReviewSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, summaryKey(courseID, generation), data, c.ttl).Err(); err != nil {
		log.Printf("review summary cache set %s: %v", courseID, err)
	}
}

// Invalidate moves the course to a new generation. Entries of older generations
// are never read again and expire with their TTL.
func (c *ReviewSummaryCache) Invalidate(ctx context.Context, courseID string) {
	if err := c.client.Incr(ctx, generationKey(courseID)).Err(); err != nil {
		log.Printf("review summary cache invalidate %s: %v", courseID, err)
	}
}

func generationKey(courseID string) string {
	return "reviews:summary:gen:" + courseID
}

func summaryKey(courseID string, generation int64) string {
	return fmt.Sprintf("reviews:summary:%s:%d", courseID, generation)
}
