package header

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/usecase/upload"
)

type settingsStore interface {
	Load(ctx context.Context, namespace string) domain.HeaderSettings
	Save(ctx context.Context, namespace string, settings domain.HeaderSettings) error
}

type uploadCoordinator interface {
	Submit(session string, slot domain.Slot, file domain.SourceFile, deliver upload.Deliver) (uint64, error)
	Supersede(session string, slot domain.Slot)
}

type notifier interface {
	Push(session string, kind domain.NotificationKind, message string) domain.Notification
}
