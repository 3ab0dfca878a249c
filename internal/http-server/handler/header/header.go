package header

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/http-server/handler/dto"
	"storefront/internal/http-server/handler/response"
	"storefront/internal/http-server/middleware"
	"storefront/internal/repository/blob"
	header_uc "storefront/internal/usecase/header"
	"storefront/internal/usecase/processor"
	"storefront/internal/usecase/upload"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxMemory = 4 << 20

type HeaderHandler struct {
	usecase      headerUsecase
	maxBodyBytes int64
	validate     *validator.Validate
	logger       *zlog.Zerolog
}

func NewHeaderHandler(usecase headerUsecase, maxBodyBytes int64, logger *zlog.Zerolog) *HeaderHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = domain.DefaultMaxUploadBytes
	}
	return &HeaderHandler{
		usecase:      usecase,
		maxBodyBytes: maxBodyBytes,
		validate:     validator.New(),
		logger:       logger,
	}
}

func (h *HeaderHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.respondSettings(w, http.StatusOK, h.usecase.Draft(r.Context(), middleware.Session(r.Context())))
}

// GetPreview renders the draft, or the persisted settings with ?target=applied.
func (h *HeaderHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.Session(ctx)

	settings := h.usecase.Draft(ctx, session)
	if r.URL.Query().Get("target") == "applied" {
		settings = h.usecase.Applied(ctx, session)
	}
	response.JSON(w, h.logger, http.StatusOK, header_uc.Preview(settings))
}

func (h *HeaderHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.ColorRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, h.logger, http.StatusBadRequest, "Color must be a hex color like #667eea", nil)
		return
	}

	settings, err := h.usecase.SetColor(ctx, middleware.Session(ctx), req.Color)
	if err != nil {
		h.handleHeaderError(w, err)
		return
	}
	h.respondSettings(w, http.StatusOK, settings)
}

func (h *HeaderHandler) ResetColor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.respondSettings(w, http.StatusOK, h.usecase.ResetColor(ctx, middleware.Session(ctx)))
}

// Upload accepts a multipart "file" for the {slot} URL parameter. Processing is
// asynchronous: the response carries the upload token, and the draft changes
// once the newest upload for the slot finishes.
func (h *HeaderHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.Session(ctx)
	slot := domain.Slot(chi.URLParam(r, "slot"))

	if !slot.Valid() {
		response.Error(w, h.logger, http.StatusNotFound, "Unknown upload slot", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, h.logger, http.StatusRequestEntityTooLarge, "Request body too large", nil)
			return
		}
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid request format", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fh, err := r.FormFile("file")
	if err != nil {
		response.Error(w, h.logger, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", fh.Filename).Msg("Failed to read file")
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	src := domain.SourceFile{
		Name:     fh.Filename,
		MIMEType: declaredType(fh.Header.Get("Content-Type"), data),
		Size:     fh.Size,
		Data:     data,
	}

	token, err := h.usecase.Upload(ctx, session, slot, src)
	if err != nil {
		h.handleUploadError(w, err, fh.Filename)
		return
	}

	h.logger.Info().
		Str("session", session).
		Str("slot", string(slot)).
		Str("filename", fh.Filename).
		Int64("size", fh.Size).
		Uint64("token", token).
		Msg("Header image upload accepted")

	response.JSON(w, h.logger, http.StatusAccepted, dto.UploadResponse{
		Slot:   string(slot),
		Token:  token,
		Status: "processing",
	})
}

func (h *HeaderHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.usecase.RemoveImage(ctx, middleware.Session(ctx), domain.Slot(chi.URLParam(r, "slot")))
	if err != nil {
		h.handleHeaderError(w, err)
		return
	}
	h.respondSettings(w, http.StatusOK, settings)
}

func (h *HeaderHandler) Apply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.usecase.Apply(ctx, middleware.Session(ctx))
	if err != nil {
		h.handleSaveError(w, err)
		return
	}
	h.respondSettings(w, http.StatusOK, settings)
}

func (h *HeaderHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.usecase.Reset(ctx, middleware.Session(ctx))
	if err != nil {
		h.handleSaveError(w, err)
		return
	}
	h.respondSettings(w, http.StatusOK, settings)
}

// declaredType prefers the client's Content-Type and sniffs the bytes only when
// none was sent.
func declaredType(contentType string, data []byte) string {
	mt := processor.NormalizeMIME(contentType)
	if mt == "" || mt == "application/octet-stream" {
		mt = processor.NormalizeMIME(mimetype.Detect(data).String())
	}
	return mt
}

func (h *HeaderHandler) respondSettings(w http.ResponseWriter, status int, settings domain.HeaderSettings) {
	response.JSON(w, h.logger, status, dto.HeaderResponse{
		Settings: settings,
		Preview:  header_uc.Preview(settings),
	})
}

func (h *HeaderHandler) handleUploadError(w http.ResponseWriter, err error, filename string) {
	msg := header_uc.UploadErrorMessage(err)
	switch {
	case errors.Is(err, processor.ErrUnsupportedFormat):
		h.logger.Info().Str("filename", filename).Msg("Unsupported upload format")
		response.Error(w, h.logger, http.StatusUnsupportedMediaType, msg, nil)
	case errors.Is(err, processor.ErrFileTooLarge):
		h.logger.Info().Str("filename", filename).Msg("Upload too large")
		response.Error(w, h.logger, http.StatusRequestEntityTooLarge, msg, nil)
	case errors.Is(err, header_uc.ErrInvalidSlot):
		response.Error(w, h.logger, http.StatusNotFound, "Unknown upload slot", nil)
	case errors.Is(err, upload.ErrClosed):
		response.Error(w, h.logger, http.StatusServiceUnavailable, "Server is shutting down", err)
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("Upload failed")
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to upload file", err)
	}
}

func (h *HeaderHandler) handleHeaderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, header_uc.ErrInvalidColor):
		response.Error(w, h.logger, http.StatusBadRequest, "Color must be a hex color like #667eea", nil)
	case errors.Is(err, header_uc.ErrInvalidSlot):
		response.Error(w, h.logger, http.StatusNotFound, "Unknown upload slot", nil)
	default:
		h.logger.Error().Err(err).Msg("Header update failed")
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to update header", err)
	}
}

func (h *HeaderHandler) handleSaveError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("Failed to persist header settings")
	status := http.StatusInternalServerError
	if errors.Is(err, blob.ErrQuotaExceeded) {
		status = http.StatusInsufficientStorage
	}
	response.Error(w, h.logger, status, header_uc.MsgSaveFailed, err)
}
