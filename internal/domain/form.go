package domain

import (
	"errors"
	"regexp"
)

var ErrValidationFailed = errors.New("validation failed")

// Rule is one declarative field check. Rules are declared statically per form
// and never mutated at runtime.
type Rule struct {
	Field     string
	Required  bool
	Checkbox  bool
	MinLength int
	Pattern   *regexp.Regexp
	Message   string
	// Sensitive fields are validated but dropped from submission events.
	Sensitive bool
}

// FieldError reports a failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidationFailed
}

type FormID string

const (
	FormSignIn  FormID = "sign-in"
	FormSignUp  FormID = "sign-up"
	FormAddress FormID = "address"
	FormContact FormID = "contact"
)

// Form bundles a rule table with the feedback shown around submission.
type Form struct {
	ID             FormID
	Rules          []Rule
	InvalidMessage string
}
