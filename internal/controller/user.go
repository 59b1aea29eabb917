package controller

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	*baseController
}

// GetMe returns the local profile of the caller. Users the mirror has not
// synced yet are answered from the token claims.
func (uc UserController) GetMe(ctx *gin.Context) {
	authUser, err := uc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", err, nil)
		return
	}

	user, err := uc.app.Repository.User.GetByID(ctx, nil, authUser.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		util.ResponseSuccess(ctx, gin.H{"user": authUser, "synced": false})
	case err != nil:
		uc.app.Logger.Errorf("Failed to load user %s: %v", authUser.ID, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "", err, nil)
	default:
		util.ResponseSuccess(ctx, gin.H{"user": user, "synced": true})
	}
}
