package middleware

import (
	"sync"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const (
	// DefaultAuthRate and DefaultAuthBurst throttle login, register and refresh per IP.
	DefaultAuthRate  rate.Limit = 1
	DefaultAuthBurst            = 10

	visitorTTL = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore is an echo middleware.RateLimiterStore with one token bucket
// per identifier. Idle buckets are dropped after visitorTTL.
type limiterStore struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	rate        rate.Limit
	burst       int
	now         func() time.Time
	lastCleanup time.Time
}

func newLimiterStore(r rate.Limit, burst int) *limiterStore {
	return &limiterStore{
		visitors: map[string]*visitor{},
		rate:     r,
		burst:    burst,
		now:      time.Now,
	}
}

func (s *limiterStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, ok := s.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.visitors[identifier] = v
	}
	v.lastSeen = now

	if now.Sub(s.lastCleanup) > visitorTTL {
		for id, other := range s.visitors {
			if now.Sub(other.lastSeen) > visitorTTL {
				delete(s.visitors, id)
			}
		}
		s.lastCleanup = now
	}

	return v.limiter.AllowN(now, 1), nil
}

type RateLimitMiddleware struct {
	server *server.Server
	store  *limiterStore
}

func NewRateLimitMiddleware(s *server.Server, r rate.Limit, burst int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
		store:  newLimiterStore(r, burst),
	}
}

// Limit answers 429 once a client IP has used up its bucket.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewInternalServerError()
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Str("ip", identifier).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests, slow down")
		},
	})
}

// RecordRateLimitHit sends a RateLimitHit custom event to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
