package form

import (
	"errors"
	"strings"

	"storefront/internal/domain"
)

var (
	ErrUnknownForm   = errors.New("unknown form")
	ErrUnknownField  = errors.New("unknown form field")
	ErrPublishFailed = errors.New("failed to publish submission")
)

// ValidationError carries every failing field of a rejected form.
type ValidationError struct {
	Form   domain.FormID
	Fields []domain.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return string(e.Form) + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrValidationFailed
}
