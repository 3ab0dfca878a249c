package notification

import (
	"net/http"

	"storefront/internal/http-server/handler/dto"
	"storefront/internal/http-server/handler/response"
	"storefront/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

type NotificationHandler struct {
	presenter presenter
	logger    *zlog.Zerolog
}

func NewNotificationHandler(p presenter, logger *zlog.Zerolog) *NotificationHandler {
	return &NotificationHandler{presenter: p, logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, h.logger, http.StatusOK, dto.NotificationsResponse{
		Notifications: h.presenter.Active(middleware.Session(r.Context())),
	})
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !h.presenter.Dismiss(middleware.Session(r.Context()), chi.URLParam(r, "id")) {
		response.Error(w, h.logger, http.StatusNotFound, "Notification not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
