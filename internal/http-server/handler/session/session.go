package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/http-server/handler/dto"
	"storefront/internal/http-server/handler/response"
	"storefront/internal/http-server/middleware"
	"storefront/internal/repository/blob"

	"github.com/wb-go/wbf/zlog"
)

type SessionHandler struct {
	blobs  blobStore
	logger *zlog.Zerolog
}

func NewSessionHandler(blobs blobStore, logger *zlog.Zerolog) *SessionHandler {
	return &SessionHandler{blobs: blobs, logger: logger}
}

// Get returns the session id and the signed-in user, if any.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.Session(ctx)
	resp := dto.SessionResponse{SessionID: session}

	raw, err := h.blobs.Get(ctx, session, domain.KeyCurrentUser)
	switch {
	case err == nil:
		var user domain.CurrentUser
		if err := json.Unmarshal(raw, &user); err != nil {
			h.logger.Warn().Err(err).Str("session", session).Msg("Stored user is corrupt")
		} else {
			resp.User = &user
		}
	case !errors.Is(err, blob.ErrNotFound):
		h.logger.Warn().Err(err).Str("session", session).Msg("Failed to read current user")
	}

	response.JSON(w, h.logger, http.StatusOK, resp)
}

// SignOut forgets the signed-in user. The session id itself stays valid.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.Session(ctx)

	if err := h.blobs.Delete(ctx, session, domain.KeyCurrentUser); err != nil {
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to sign out", err)
		return
	}

	h.logger.Info().Str("session", session).Msg("User signed out")
	w.WriteHeader(http.StatusNoContent)
}
