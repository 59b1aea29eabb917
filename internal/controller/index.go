package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/gin-gonic/gin"
)

type IndexController struct {
	*baseController
}

func (ic IndexController) Index(ctx *gin.Context) {
	util.ResponseSuccess(ctx, gin.H{
		"message": "Welcome to the " + constant.APP_NAME + " api",
	})
}

func (ic IndexController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := ic.app.Repository.Ping(pingCtx); err != nil {
		ic.app.Logger.Errorf("Health check failed: %v", err)
		util.ResponseFailed(ctx, http.StatusServiceUnavailable, "Database unavailable", util.ApiError{Field: "database", Message: "unreachable"}, nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"status": "ok"})
}
