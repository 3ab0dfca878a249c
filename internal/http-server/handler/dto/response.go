package dto

import "storefront/internal/domain"

type SessionResponse struct {
	SessionID string              `json:"session_id"`
	User      *domain.CurrentUser `json:"user,omitempty"`
}

type UploadResponse struct {
	Slot   string `json:"slot"`
	Token  uint64 `json:"token"`
	Status string `json:"status"`
}

type HeaderResponse struct {
	Settings domain.HeaderSettings `json:"settings"`
	Preview  domain.HeaderPreview  `json:"preview"`
}

type SubmissionResponse struct {
	ID     string `json:"id"`
	Form   string `json:"form"`
	Status string `json:"status"`
}

type ValidationErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields"`
}

type FieldCheckResponse struct {
	Valid bool               `json:"valid"`
	Error *domain.FieldError `json:"error,omitempty"`
}

type PageResponse struct {
	State   domain.PageState `json:"state"`
	Changed bool             `json:"changed"`
}

type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
}

type ChartsResponse struct {
	Charts []domain.Chart `json:"charts"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}
