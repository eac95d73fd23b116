package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/interfaces/http/dto"
)

var setupValidatorOnce sync.Once

// SetupValidator makes the binding validator report JSON field names and
// registers the data manager tags:
//
//	project_code  a valid project code such as Q2ABCD
//	ror           a ROR IRI such as https://ror.org/03a1kwz48 or the bare id
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("project_code", func(fl validator.FieldLevel) bool {
			_, err := project.ParseCode(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("ror", func(fl validator.FieldLevel) bool {
			_, ok := measurement.ExtractRORID(fl.Field().String())
			return ok
		})
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return fld.Name
}

// ValidationDetails converts binding errors into per-field details. Errors
// other than validator errors, such as malformed JSON, yield nil.
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil
	}
	details := make([]dto.ValidationDetail, len(fieldErrors))
	for i, fe := range fieldErrors {
		details[i] = dto.ValidationDetail{Field: fe.Field(), Message: describe(fe)}
	}
	return details
}

// HandleValidationError writes a 400 response for a failed bind
func HandleValidationError(c *gin.Context, err error) {
	details := ValidationDetails(err)
	if details == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInvalidJSON, "Invalid request body", GetRequestID(c)))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", GetRequestID(c), details))
}

// fixedMessages are the tags whose message does not depend on the parameter
var fixedMessages = map[string]string{
	"required":     "This field is required",
	"email":        "Invalid email format",
	"uuid":         "Invalid UUID format",
	"url":          "Invalid URL format",
	"project_code": "Invalid project code",
	"ror":          "Must be a ROR identifier",
}

// boundMessages take the tag parameter
var boundMessages = map[string]string{
	"oneof": "Must be one of: %s",
	"gte":   "Must be greater than or equal to %s",
	"lte":   "Must be less than or equal to %s",
	"gt":    "Must be greater than %s",
	"lt":    "Must be less than %s",
	"len":   "Must have exactly %s elements",
}

func describe(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	kind := fe.Kind()
	switch fe.Tag() {
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch kind {
		case reflect.String:
			return fmt.Sprintf("Must be %s %s characters", bound, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("Must contain %s %s entries", bound, fe.Param())
		}
		return fmt.Sprintf("Must be %s %s", bound, fe.Param())
	case "len":
		if kind == reflect.String {
			return fmt.Sprintf("Must be exactly %s characters", fe.Param())
		}
	}
	if format, ok := boundMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	return "Invalid value"
}
