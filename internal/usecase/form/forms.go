package form

import (
	"regexp"

	"storefront/internal/domain"
)

var (
	EmailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	PhonePattern        = regexp.MustCompile(`^(\+62|62|08)(\d{3,4}-?){2}\d{3,4}$`)
	ContactPhonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	NamePattern         = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

var (
	emailRule = domain.Rule{
		Required: true,
		Pattern:  EmailPattern,
		Message:  "Please enter a valid email address",
	}
	passwordRule = domain.Rule{
		Field:     "password",
		Required:  true,
		MinLength: 6,
		Message:   "Password must be at least 6 characters long",
		Sensitive: true,
	}
	agreementMessage = "You must agree to the Terms and Privacy Policy"
)

func withField(r domain.Rule, field string) domain.Rule {
	r.Field = field
	return r
}

// Forms is the single rule table shared by every page.
var Forms = map[domain.FormID]domain.Form{
	domain.FormSignIn: {
		ID: domain.FormSignIn,
		Rules: []domain.Rule{
			withField(emailRule, "email"),
			passwordRule,
		},
	},
	domain.FormSignUp: {
		ID: domain.FormSignUp,
		Rules: []domain.Rule{
			{Field: "fullName", Required: true, MinLength: 2, Message: "Please enter your full name"},
			withField(emailRule, "email"),
			passwordRule,
		},
	},
	domain.FormAddress: {
		ID: domain.FormAddress,
		Rules: []domain.Rule{
			{Field: "phoneNo", Required: true, Pattern: PhonePattern, Message: "Please enter a valid phone number (e.g., 08123456789)"},
			{Field: "shopName", Required: true, MinLength: 3, Message: "Please enter a valid shop name (min. 3 characters)"},
			{Field: "terms", Required: true, Checkbox: true, Message: agreementMessage},
			{Field: "privacy", Required: true, Checkbox: true, Message: agreementMessage},
		},
	},
	domain.FormContact: {
		ID: domain.FormContact,
		Rules: []domain.Rule{
			{Field: "name", Required: true, MinLength: 2, Pattern: NamePattern, Message: "Nama harus berisi minimal 2 karakter dan hanya huruf"},
			{Field: "email", Required: true, Pattern: EmailPattern, Message: "Format email tidak valid"},
			{Field: "phone", Pattern: ContactPhonePattern, Message: "Format nomor telepon tidak valid"},
			{Field: "subject", Required: true, Message: "Silakan pilih subjek"},
			{Field: "message", Required: true, MinLength: 10, Message: "Pesan harus berisi minimal 10 karakter"},
			{Field: "privacy", Required: true, Checkbox: true, Message: "Anda harus menyetujui kebijakan privasi"},
		},
		InvalidMessage: "Mohon perbaiki kesalahan pada form",
	},
}

// Lookup returns the form and the rule for one of its fields.
func Lookup(id domain.FormID, field string) (domain.Form, domain.Rule, error) {
	f, ok := Forms[id]
	if !ok {
		return domain.Form{}, domain.Rule{}, ErrUnknownForm
	}
	for _, r := range f.Rules {
		if r.Field == field {
			return f, r, nil
		}
	}
	return f, domain.Rule{}, ErrUnknownField
}
