package form

import (
	"context"

	"storefront/internal/domain"
)

type submissionPublisher interface {
	Publish(ctx context.Context, sub *domain.Submission) error
}

type notifier interface {
	Push(session string, kind domain.NotificationKind, message string) domain.Notification
}
