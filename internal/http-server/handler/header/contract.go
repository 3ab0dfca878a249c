package header

import (
	"context"

	"storefront/internal/domain"
)

type headerUsecase interface {
	Draft(ctx context.Context, session string) domain.HeaderSettings
	Applied(ctx context.Context, session string) domain.HeaderSettings
	SetColor(ctx context.Context, session, color string) (domain.HeaderSettings, error)
	ResetColor(ctx context.Context, session string) domain.HeaderSettings
	Upload(ctx context.Context, session string, slot domain.Slot, file domain.SourceFile) (uint64, error)
	RemoveImage(ctx context.Context, session string, slot domain.Slot) (domain.HeaderSettings, error)
	Apply(ctx context.Context, session string) (domain.HeaderSettings, error)
	Reset(ctx context.Context, session string) (domain.HeaderSettings, error)
}
