package page

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/http-server/handler/dto"
	"storefront/internal/http-server/handler/response"
	"storefront/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

type PageHandler struct {
	usecase pageUsecase
	logger  *zlog.Zerolog
}

func NewPageHandler(usecase pageUsecase, logger *zlog.Zerolog) *PageHandler {
	return &PageHandler{usecase: usecase, logger: logger}
}

func (h *PageHandler) State(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	response.JSON(w, h.logger, http.StatusOK, dto.PageResponse{
		State: h.usecase.State(ctx, middleware.Session(ctx)),
	})
}

// Navigate never fails: an unknown page returns the unchanged state.
func (h *PageHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, changed := h.usecase.NavigateTo(ctx, middleware.Session(ctx), domain.PageID(chi.URLParam(r, "page")))
	response.JSON(w, h.logger, http.StatusOK, dto.PageResponse{
		State:   state,
		Changed: changed,
	})
}
