package form

import (
	"errors"
	"mime"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/http-server/handler/dto"
	"storefront/internal/http-server/handler/response"
	"storefront/internal/http-server/middleware"
	form_uc "storefront/internal/usecase/form"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxFormBytes = 64 << 10

type FormHandler struct {
	usecase  formUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewFormHandler(usecase formUsecase, logger *zlog.Zerolog) *FormHandler {
	return &FormHandler{
		usecase:  usecase,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit accepts either {"fields":{...}} JSON or a urlencoded/multipart form post.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.FormID(chi.URLParam(r, "form"))

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	fields, err := h.readFields(r)
	if err != nil {
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	sub, err := h.usecase.Submit(ctx, middleware.Session(ctx), id, fields)
	if err != nil {
		h.handleSubmitError(w, err, id)
		return
	}

	response.JSON(w, h.logger, http.StatusAccepted, dto.SubmissionResponse{
		ID:     sub.ID,
		Form:   string(sub.Form),
		Status: "accepted",
	})
}

// CheckField validates a single field value, for on-blur feedback.
func (h *FormHandler) CheckField(w http.ResponseWriter, r *http.Request) {
	id := domain.FormID(chi.URLParam(r, "form"))
	field := chi.URLParam(r, "field")

	var req dto.FieldRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	fe, err := h.usecase.CheckField(id, field, req.Value)
	if err != nil {
		h.handleSubmitError(w, err, id)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, dto.FieldCheckResponse{
		Valid: fe == nil,
		Error: fe,
	})
}

func (h *FormHandler) readFields(r *http.Request) (map[string]string, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		fields := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		return fields, nil
	default:
		var req dto.FormRequest
		if err := response.Decode(r, &req); err != nil {
			return nil, err
		}
		if err := h.validate.Struct(req); err != nil {
			return nil, err
		}
		return req.Fields, nil
	}
}

func (h *FormHandler) handleSubmitError(w http.ResponseWriter, err error, id domain.FormID) {
	var verr *form_uc.ValidationError
	switch {
	case errors.As(err, &verr):
		response.JSON(w, h.logger, http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Message: "Form validation failed",
			Fields:  verr.Fields,
		})
	case errors.Is(err, form_uc.ErrUnknownForm):
		response.Error(w, h.logger, http.StatusNotFound, "Unknown form", nil)
	case errors.Is(err, form_uc.ErrUnknownField):
		response.Error(w, h.logger, http.StatusNotFound, "Unknown form field", nil)
	case errors.Is(err, form_uc.ErrPublishFailed):
		response.Error(w, h.logger, http.StatusServiceUnavailable, "Submission could not be queued", err)
	default:
		h.logger.Error().Err(err).Str("form", string(id)).Msg("Form submission failed")
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to submit form", err)
	}
}
