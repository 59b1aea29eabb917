package middleware

import (
	"net/http"

	"github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/gin-gonic/gin"
)

func unauthorized(ctx *gin.Context, message string) {
	util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.ApiError{Field: "unauthorized", Message: message}, nil)
}

// AuthMiddleware accepts only access tokens issued by the session service.
func (m Middleware) AuthMiddleware(ctx *gin.Context) {
	token, err := util.ReadBearerToken(ctx)
	if err != nil {
		m.logger.Debugf("Rejected %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		unauthorized(ctx, err.Error())
		return
	}

	claim, err := m.jwt.VerifyJwtToken(token)
	if err != nil {
		m.logger.Debugf("Failed to verify token: %v", err)
		unauthorized(ctx, "invalid or expired token")
		return
	}

	if claim.Type != constant.JWT_TYPE_ACCESS {
		m.logger.Debugf("Invalid token type: %s", claim.Type)
		unauthorized(ctx, "invalid token type")
		return
	}

	ctx.Set(CONTEXT_USER_KEY, claim.User)
	ctx.Next()
}
