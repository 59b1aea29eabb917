package middleware

import (
	"github.com/SeakMengs/AutoTermo/internal/auth"
	ratelimiter "github.com/SeakMengs/AutoTermo/internal/rate_limiter"
	"go.uber.org/zap"
)

// Context key under which AuthMiddleware stores the verified auth.JWTPayload.
const CONTEXT_USER_KEY = "user"

type Middleware struct {
	jwt         auth.JWTInterface
	rateLimiter ratelimiter.Limiter
	logger      *zap.SugaredLogger
}

func NewMiddleware(jwt auth.JWTInterface, rateLimiter ratelimiter.Limiter, logger *zap.SugaredLogger) *Middleware {
	return &Middleware{jwt: jwt, rateLimiter: rateLimiter, logger: logger}
}
