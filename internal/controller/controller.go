package controller

import (
	"errors"
	"fmt"

	appcontext "github.com/SeakMengs/AutoTermo/internal/app_context"
	"github.com/SeakMengs/AutoTermo/internal/auth"
	"github.com/SeakMengs/AutoTermo/internal/middleware"
	"github.com/SeakMengs/AutoTermo/internal/service"
	"github.com/gin-gonic/gin"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	User  *UserController
	Index *IndexController
	Termo *TermoController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		User:  &UserController{baseController: bc},
		Index: &IndexController{baseController: bc},
		Termo: &TermoController{baseController: bc},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get(middleware.CONTEXT_USER_KEY)
	if !exists {
		return nil, errors.New("user not found in context")
	}

	payload, ok := user.(auth.JWTPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected user type %T in context", user)
	}

	return &payload, nil
}

func (b *baseController) getActor(ctx *gin.Context) (service.Actor, error) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		return service.Actor{}, err
	}

	return service.Actor{UserID: user.ID, Role: user.Role}, nil
}
