package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

var tagNamesOnce sync.Once

// useJSONFieldNames makes validator report "firstName" instead of "FirstName".
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})
}

// Bind decodes the body (JSON, urlencoded or multipart, by Content-Type) into out
// and validates it. Failures come back as *apperr.Error.
func Bind(ctx *gin.Context, out interface{}) error {
	tagNamesOnce.Do(useJSONFieldNames)

	err := ctx.ShouldBind(out)

	// an empty JSON body is treated like "{}"
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(out)
	}

	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &apperr.Error{Kind: apperr.KindTooLarge, Message: "Request body too large", Err: err}
	}

	details, missingOnly := parseBindError(err)

	message := "Invalid request body"
	if missingOnly {
		message = "missing parameters"
	}

	return &apperr.Error{Kind: apperr.KindValidation, Message: message, Details: details, Err: err}
}

// parseBindError shapes err for the response; missingOnly is true when every
// failure is an absent required field.
func parseBindError(err error) (details interface{}, missingOnly bool) {
	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))
		missingOnly = true

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			if rule != "required" {
				missingOnly = false
			}

			fields = append(fields, FieldError{
				Field:   fieldError.Field(),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return gin.H{"fields": fields}, missingOnly
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{
			"json": "invalid_json_syntax",
		}, false
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{
				{
					Field:   field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
				},
			},
		}, false
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}, false
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
