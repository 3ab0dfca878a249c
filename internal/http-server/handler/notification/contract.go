package notification

import "storefront/internal/domain"

type presenter interface {
	Active(session string) []domain.Notification
	Dismiss(session, id string) bool
}
