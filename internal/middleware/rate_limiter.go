package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/gin-gonic/gin"
)

func (m Middleware) RateLimiterMiddleware(ctx *gin.Context) {
	allowed, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if allowed {
		ctx.Next()
		return
	}

	seconds := int(math.Ceil(retryAfter.Seconds()))
	m.logger.Debugf("Rate limited %s, retry after %ds", ctx.ClientIP(), seconds)
	ctx.Header("Retry-After", strconv.Itoa(seconds))
	util.ResponseFailed(ctx, http.StatusTooManyRequests, "Too many requests", util.ApiError{Field: "rateLimit", Message: "rate limit exceeded"}, nil)
}
