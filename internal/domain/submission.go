package domain

import "time"

// Submission is an accepted form post travelling from the API to the applier.
type Submission struct {
	ID          string            `json:"id"`
	Session     string            `json:"session"`
	Form        FormID            `json:"form"`
	Fields      map[string]string `json:"fields"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// SignupData mirrors the two-step registration record kept per session.
type SignupData struct {
	FullName             string     `json:"fullName,omitempty"`
	Email                string     `json:"email,omitempty"`
	PhoneNo              string     `json:"phoneNo,omitempty"`
	ShopName             string     `json:"shopName,omitempty"`
	Step                 int        `json:"step"`
	RegistrationComplete bool       `json:"registrationComplete,omitempty"`
	RegistrationTime     *time.Time `json:"registrationTime,omitempty"`
}

type CurrentUser struct {
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	LoginTime time.Time `json:"loginTime"`
}

type ContactMessage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
}

const (
	KafkaTopicSubmissions = "storefront-submissions"
	KafkaGroupID          = "storefront-submissions-group"
)
