package dashboard

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/http-server/handler/dto"
	"storefront/internal/http-server/handler/response"
	dashboard_uc "storefront/internal/usecase/dashboard"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

type DashboardHandler struct {
	orders   ordersUsecase
	charts   func() []domain.Chart
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewDashboardHandler(orders ordersUsecase, charts func() []domain.Chart, logger *zlog.Zerolog) *DashboardHandler {
	return &DashboardHandler{
		orders:   orders,
		charts:   charts,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *DashboardHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, ok := h.listOrders(w, r)
	if !ok {
		return
	}
	response.JSON(w, h.logger, http.StatusOK, dto.OrdersResponse{Orders: orders, Total: len(orders)})
}

// OrdersFragment returns the filtered order cards as HTML.
func (h *DashboardHandler) OrdersFragment(w http.ResponseWriter, r *http.Request) {
	orders, ok := h.listOrders(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.orders.RenderList(w, orders); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render orders fragment")
	}
}

func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.logger, http.StatusOK, dto.ChartsResponse{Charts: h.charts()})
}

func (h *DashboardHandler) listOrders(w http.ResponseWriter, r *http.Request) ([]domain.Order, bool) {
	q := r.URL.Query()
	req := dto.OrdersRequest{
		Status: q.Get("status"),
		Query:  q.Get("q"),
		From:   q.Get("from"),
		To:     q.Get("to"),
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid order filter", nil)
		return nil, false
	}

	orders, err := h.orders.List(domain.OrderFilter{
		Status: req.Status,
		Query:  req.Query,
		From:   req.From,
		To:     req.To,
	})
	if err != nil {
		if errors.Is(err, dashboard_uc.ErrInvalidDate) || errors.Is(err, dashboard_uc.ErrInvalidStatus) {
			response.Error(w, h.logger, http.StatusBadRequest, err.Error(), nil)
			return nil, false
		}
		h.logger.Error().Err(err).Msg("Failed to list orders")
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to list orders", err)
		return nil, false
	}
	return orders, true
}
