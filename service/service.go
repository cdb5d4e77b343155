package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"crazzzytube/apperror"
	"crazzzytube/repository"
)

// ErrNonRetryable marks failures that retrying the same message cannot fix.
var ErrNonRetryable = errors.New("non-retryable error")

var validate = validator.New(validator.WithRequiredStructEnabled())

// fromRepo maps a repository error onto the caller-facing taxonomy.
func fromRepo(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(entity + " not found")
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Persistence(entity+" operation failed", err)
}

// validationError turns validator output into a single Validation error.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Validation(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "mongodb":
			msgs = append(msgs, fmt.Sprintf("%s is not a valid id", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}

func requireContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.Validation("content is required")
	}
	return content, nil
}
