package middleware

import (
	"net/http"

	"github.com/SeakMengs/AutoTermo/internal/auth"
	"github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/gin-gonic/gin"
)

// RequireRoles must run after AuthMiddleware.
func (m Middleware) RequireRoles(roles ...constant.UserRole) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := ctx.Get(CONTEXT_USER_KEY)
		payload, ok := user.(auth.JWTPayload)
		if !ok {
			unauthorized(ctx, "user not found in context")
			return
		}

		if !util.HasRole(payload.Role, roles...) {
			m.logger.Debugf("Role %s is not allowed on %s", payload.Role, ctx.FullPath())
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.ApiError{Field: "role", Message: "role " + string(payload.Role) + " cannot perform this action"}, nil)
			return
		}

		ctx.Next()
	}
}
