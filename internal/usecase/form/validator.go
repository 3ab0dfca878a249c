package form

import (
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"
)

const defaultRequiredMessage = "Field ini wajib diisi"

// ValidateField applies one rule to a raw value. Checks run in order: required,
// then (for non-empty values) pattern, then minimum length. An empty optional
// field is valid.
func ValidateField(value string, rule domain.Rule) *domain.FieldError {
	if rule.Checkbox {
		if rule.Required && !IsChecked(value) {
			return fieldError(rule, true)
		}
		return nil
	}

	value = strings.TrimSpace(value)

	if value == "" {
		if rule.Required {
			return fieldError(rule, true)
		}
		return nil
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return fieldError(rule, false)
	}

	if rule.MinLength > 0 && utf8.RuneCountInString(value) < rule.MinLength {
		return fieldError(rule, false)
	}

	return nil
}

// ValidateForm checks every rule and collects all failures in rule order.
func ValidateForm(fields map[string]string, rules []domain.Rule) (bool, []domain.FieldError) {
	var errs []domain.FieldError
	for _, rule := range rules {
		if fe := ValidateField(fields[rule.Field], rule); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return len(errs) == 0, errs
}

// IsChecked reports whether a submitted checkbox value means "checked".
func IsChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func fieldError(rule domain.Rule, required bool) *domain.FieldError {
	msg := rule.Message
	if msg == "" && required {
		msg = defaultRequiredMessage
	}
	return &domain.FieldError{Field: rule.Field, Message: msg}
}
