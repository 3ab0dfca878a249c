package page

import (
	"context"

	"storefront/internal/domain"
)

type pageUsecase interface {
	State(ctx context.Context, session string) domain.PageState
	NavigateTo(ctx context.Context, session string, id domain.PageID) (domain.PageState, bool)
}
