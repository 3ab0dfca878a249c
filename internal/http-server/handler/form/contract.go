package form

import (
	"context"

	"storefront/internal/domain"
)

type formUsecase interface {
	Submit(ctx context.Context, session string, id domain.FormID, fields map[string]string) (*domain.Submission, error)
	CheckField(id domain.FormID, field, value string) (*domain.FieldError, error)
}
