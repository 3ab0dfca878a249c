package dashboard

import (
	"io"

	"storefront/internal/domain"
)

type ordersUsecase interface {
	List(f domain.OrderFilter) ([]domain.Order, error)
	RenderList(w io.Writer, orders []domain.Order) error
}
