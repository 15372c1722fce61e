package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/fetch"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates the addressed resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var validatorErrs validator.ValidationErrors
	var notFoundErr *ErrNotFound
	var fetchErr *fetch.Error

	switch {
	case errors.As(err, &validationErr), errors.As(err, &validatorErrs), errors.Is(err, db.ErrEmptySkillName):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage renders validator errors as one line per field.
func validationMessage(err error) string {
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) || len(validatorErrs) == 0 {
		return err.Error()
	}
	fe := validatorErrs[0]
	msg := fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	return msg
}
