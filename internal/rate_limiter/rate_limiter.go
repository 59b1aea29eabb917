package ratelimiter

import (
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"go.uber.org/zap"
)

type Limiter interface {
	// Allow reports whether the key may proceed, and if not, how long until it may retry.
	Allow(key string) (bool, time.Duration)
}

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	// For unit test
	if logger == nil {
		logger = util.NewNopLogger()
	}

	return NewFixedWindowLimiter(cfg, logger)
}
