package util

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// credit: https://github.com/go-playground/validator/issues/559#issuecomment-976459959

type ApiError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors that carry a message safe to show to clients, the wrapped chain stays in the logs.
type publicError interface {
	PublicMessage() string
}

func msgForTag(fe validator.FieldError, field string) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%v is required", field)
	case "max":
		return fmt.Sprintf("%v must be at most %v characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%v must be one of: %v", field, fe.Param())
	case "required_without":
		return fmt.Sprintf("%v is required when %v is not given", field, fe.Param())
	case "excluded_with":
		return fmt.Sprintf("%v cannot be combined with %v", field, fe.Param())
	case "strNotEmpty":
		return fmt.Sprintf("%v must not be empty or contain only whitespace characters", field)
	case "signatureImage":
		return fmt.Sprintf("%v must be a base64 PNG or JPEG, optionally as a data URL", field)
	}

	return fe.Error()
}

/*
GenerateErrorMessages turns err into a list of ApiError for the response envelope.
Validation errors produce one entry per field, using the json name of the field.
Other errors produce a single entry under fieldName when given.

Example output:

	[
	  {
		"field": "signatureType",
		"message": "signatureType must be one of: STUDENT_COMMITMENT PROFESSOR_SELECTION_RECORD"
	  }
	]
*/
func GenerateErrorMessages(err error, fieldName ...string) []ApiError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]ApiError, len(ve))
		for i, fe := range ve {
			out[i] = ApiError{Field: fe.Field(), Message: msgForTag(fe, fe.Field())}
		}
		return out
	}

	field := "Unknown"
	if len(fieldName) > 0 && fieldName[0] != "" {
		field = fieldName[0]
	}

	var pe publicError
	switch {
	case errors.As(err, &pe):
		return []ApiError{{Field: field, Message: pe.PublicMessage()}}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return []ApiError{{Field: field, Message: "Record not found"}}
	default:
		return []ApiError{{Field: field, Message: err.Error()}}
	}
}

// Register the custom tags on gin's validator engine, and report fields by
// their json name so errors match the request body.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("strNotEmpty", StrNotEmpty); err != nil {
		return err
	}
	return v.RegisterValidation("signatureImage", SignatureImage)
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// check if string is empty, after trimming spaces
// Usage: `binding:"strNotEmpty"`
func StrNotEmpty(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	return strings.TrimSpace(field.String()) != ""
}

var (
	imageDataURL = regexp.MustCompile(`^data:image/(png|jpe?g)[^,]*;base64,`)
	base64Body   = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
)

// Shape check only, the image itself is decoded by the service.
// Usage: `binding:"signatureImage"`
func SignatureImage(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	s := strings.TrimSpace(field.String())
	if strings.HasPrefix(s, "data:") {
		loc := imageDataURL.FindStringIndex(s)
		if loc == nil {
			return false
		}
		s = s[loc[1]:]
	}

	return s != "" && base64Body.MatchString(s)
}
