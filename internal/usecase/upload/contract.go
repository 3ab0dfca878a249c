package upload

import (
	"context"

	"storefront/internal/domain"
)

type imageProcessor interface {
	Validate(file *domain.SourceFile, maxBytes int64) error
	Process(ctx context.Context, file domain.SourceFile, target domain.Target) (*domain.EncodedImage, error)
}
