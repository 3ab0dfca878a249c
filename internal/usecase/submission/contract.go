package submission

import (
	"context"

	"storefront/internal/domain"
)

type blobStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
}

type notifier interface {
	Push(session string, kind domain.NotificationKind, message string) domain.Notification
}
