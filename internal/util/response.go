package util

import (
	"net/http"

	constant "github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func BuildResponseSuccess(data any) Response {
	if data == nil {
		data = gin.H{}
	}

	return Response{
		Success: true,
		Message: constant.REQUEST_SUCCESSFUL,
		Data:    data,
	}
}

func ResponseSuccess(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, BuildResponseSuccess(data))
	ctx.Abort()
}

// BuildResponseFailed accepts a raw error, an already built []ApiError, or
// nil. Raw errors are rendered through GenerateErrorMessages so internal
// causes never reach the client.
func BuildResponseFailed(message string, errs any, data any) Response {
	if message == "" {
		message = constant.REQUEST_UNSUCCESSFUL
	}

	var apiErrors []ApiError
	switch e := errs.(type) {
	case nil:
		apiErrors = []ApiError{}
	case []ApiError:
		apiErrors = e
	case ApiError:
		apiErrors = []ApiError{e}
	case error:
		apiErrors = GenerateErrorMessages(e)
	default:
		apiErrors = []ApiError{{Field: "Unknown", Message: message}}
	}

	if data == nil {
		data = gin.H{}
	}

	return Response{
		Success: false,
		Message: message,
		Errors:  apiErrors,
		Data:    data,
	}
}

func ResponseFailed(ctx *gin.Context, code int, message string, errs any, data any) {
	ctx.JSON(code, BuildResponseFailed(message, errs, data))
	ctx.Abort()
}
