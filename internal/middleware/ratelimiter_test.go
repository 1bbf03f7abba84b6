package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"careermate/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// counterRedis implements the three commands the limiter uses.
type counterRedis struct {
	redis.Cmdable
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	down    bool
}

func newCounterRedis() *counterRedis {
	return &counterRedis{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (r *counterRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := redis.NewIntCmd(ctx, "incr", key)
	if r.down {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	r.counts[key]++
	cmd.SetVal(r.counts[key])
	return cmd
}

func (r *counterRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expires[key] = expiration
	cmd := redis.NewBoolCmd(ctx, "expire", key)
	cmd.SetVal(true)
	return cmd
}

func (r *counterRedis) TTL(ctx context.Context, key string) *redis.DurationCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := redis.NewDurationCmd(ctx, time.Second, "ttl", key)
	cmd.SetVal(r.expires[key])
	return cmd
}

func limitedEngine(rl *RateLimiter, before ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(before, rl.Limit("login", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/", handlers...)
	return r
}

func hit(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterPerIP(t *testing.T) {
	rdb := newCounterRedis()
	r := limitedEngine(NewRateLimiter(rdb))

	assert.Equal(t, http.StatusNoContent, hit(r, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, hit(r, "10.0.0.1:1001").Code)

	w := hit(r, "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Too many requests, please try again later"}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, hit(r, "10.0.0.2:1000").Code)
	assert.Equal(t, time.Minute, rdb.expires["rate_limit:login:ip:10.0.0.1"])
}

func TestRateLimiterPerUser(t *testing.T) {
	rdb := newCounterRedis()
	userID := uuid.New()
	asUser := func(c *gin.Context) { setIdentity(c, domain.Identity{UserID: userID, Username: "alice"}) }
	r := limitedEngine(NewRateLimiter(rdb), asUser)

	// same user from different addresses shares one bucket
	hit(r, "10.0.0.1:1")
	hit(r, "10.0.0.2:1")
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.3:1").Code)
	assert.Equal(t, int64(3), rdb.counts["rate_limit:login:user:"+userID.String()])
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rdb := newCounterRedis()
	rdb.down = true
	r := limitedEngine(NewRateLimiter(rdb))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, hit(r, "10.0.0.1:1").Code)
	}
}
