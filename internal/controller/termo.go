package controller

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/AutoTermo/internal/service"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/SeakMengs/AutoTermo/pkg/termo"
	"github.com/gin-gonic/gin"
)

type TermoController struct {
	*baseController
}

// Map engine failures to HTTP. Anything unclassified is a 500.
func termoErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "Term already signed"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "Document storage failed, retry later"
	default:
		return http.StatusInternalServerError, ""
	}
}

func (tc TermoController) fail(ctx *gin.Context, err error, field string) {
	code, message := termoErrorStatus(err)
	if code >= http.StatusInternalServerError {
		tc.app.Logger.Errorw("Termo request failed", "path", ctx.FullPath(), "error", err)
	} else {
		tc.app.Logger.Debugf("Termo request rejected: %v", err)
	}

	util.ResponseFailed(ctx, code, message, util.GenerateErrorMessages(err, field), nil)
}

func (tc TermoController) actorOrAbort(ctx *gin.Context) (service.Actor, bool) {
	actor, err := tc.getActor(ctx)
	if err != nil {
		tc.app.Logger.Errorf("Failed to get auth user: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return service.Actor{}, false
	}
	return actor, true
}

func (tc TermoController) GenerateTermo(ctx *gin.Context) {
	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	res, err := tc.app.Termos.GenerateTermo(ctx, ctx.Param("vacancyId"), actor)
	if err != nil {
		tc.fail(ctx, err, "vacancyId")
		return
	}

	util.ResponseSuccess(ctx, res)
}

func (tc TermoController) SignTermo(ctx *gin.Context) {
	type Request struct {
		SignatureImage string `json:"signatureImage" form:"signatureImage" binding:"required,strNotEmpty,max=2800000,signatureImage"`
		SignatureType  string `json:"signatureType" form:"signatureType" binding:"required,oneof=STUDENT_COMMITMENT PROFESSOR_SELECTION_RECORD"`
	}
	var body Request

	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		tc.app.Logger.Debugf("Failed to bind sign request: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	res, err := tc.app.Termos.SignTermo(ctx, ctx.Param("vacancyId"), body.SignatureImage, termo.SignatureType(body.SignatureType), actor)
	if err != nil {
		tc.fail(ctx, err, "signatureImage")
		return
	}

	util.ResponseSuccess(ctx, res)
}

func (tc TermoController) DownloadTermo(ctx *gin.Context) {
	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	res, err := tc.app.Termos.DownloadTermo(ctx, ctx.Param("vacancyId"), actor)
	if err != nil {
		tc.fail(ctx, err, "vacancyId")
		return
	}

	util.ResponseSuccess(ctx, res)
}

func (tc TermoController) GetStatusByVacancy(ctx *gin.Context) {
	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	res, err := tc.app.Termos.GetTermosStatusByVacancy(ctx, ctx.Param("vacancyId"), actor)
	if err != nil {
		tc.fail(ctx, err, "vacancyId")
		return
	}

	util.ResponseSuccess(ctx, res)
}

func (tc TermoController) GetStatusByProject(ctx *gin.Context) {
	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	res, err := tc.app.Termos.GetTermosStatusByProject(ctx, ctx.Param("projectId"), actor)
	if err != nil {
		tc.fail(ctx, err, "projectId")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"termos": res,
	})
}

func (tc TermoController) GetPendentes(ctx *gin.Context) {
	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	res, err := tc.app.Termos.GetTermosPendentes(ctx, actor)
	if err != nil {
		tc.fail(ctx, err, "")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"termos": res,
	})
}

func (tc TermoController) ValidateReady(ctx *gin.Context) {
	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	res, err := tc.app.Termos.ValidateTermoReady(ctx, ctx.Param("vacancyId"), actor)
	if err != nil {
		tc.fail(ctx, err, "vacancyId")
		return
	}

	util.ResponseSuccess(ctx, res)
}

func (tc TermoController) NotifyPending(ctx *gin.Context) {
	type Request struct {
		VacancyID string `json:"vacancyId" form:"vacancyId" binding:"required_without=ProjectID,excluded_with=ProjectID"`
		ProjectID string `json:"projectId" form:"projectId" binding:"required_without=VacancyID"`
	}
	var body Request

	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		tc.app.Logger.Debugf("Failed to bind notify request: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	res, err := tc.app.Termos.NotifyPendingSignatures(ctx, service.NotifyScope{VacancyID: body.VacancyID, ProjectID: body.ProjectID}, actor)
	if err != nil {
		tc.fail(ctx, err, "")
		return
	}

	util.ResponseSuccess(ctx, res)
}

func (tc TermoController) RebuildDocument(ctx *gin.Context) {
	actor, ok := tc.actorOrAbort(ctx)
	if !ok {
		return
	}

	res, err := tc.app.Termos.RebuildDocument(ctx, ctx.Param("vacancyId"), actor)
	if err != nil {
		tc.fail(ctx, err, "vacancyId")
		return
	}

	util.ResponseSuccess(ctx, res)
}
