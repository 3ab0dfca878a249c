package header

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/http-server/handler/dto"
	"storefront/internal/http-server/middleware"
	"storefront/internal/repository/blob"
	header_uc "storefront/internal/usecase/header"
	"storefront/internal/usecase/processor"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

const testSession = "0b6f8f8e-3c1a-4c9e-9d1f-6a3b5f2d7e10"

var errSave = errors.New("save failed")

// pngHeader is enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type stubUsecase struct {
	settings  domain.HeaderSettings
	uploaded  *domain.SourceFile
	slot      domain.Slot
	uploadErr error
	applyErr  error
}

func (s *stubUsecase) Draft(context.Context, string) domain.HeaderSettings   { return s.settings }
func (s *stubUsecase) Applied(context.Context, string) domain.HeaderSettings { return s.settings }

func (s *stubUsecase) SetColor(_ context.Context, _ string, color string) (domain.HeaderSettings, error) {
	s.settings.Colors.Primary = color
	return s.settings, nil
}

func (s *stubUsecase) ResetColor(context.Context, string) domain.HeaderSettings {
	s.settings.Colors = domain.DefaultHeaderSettings().Colors
	return s.settings
}

func (s *stubUsecase) Upload(_ context.Context, _ string, slot domain.Slot, file domain.SourceFile) (uint64, error) {
	if s.uploadErr != nil {
		return 0, s.uploadErr
	}
	s.slot = slot
	s.uploaded = &file
	return 7, nil
}

func (s *stubUsecase) RemoveImage(_ context.Context, _ string, slot domain.Slot) (domain.HeaderSettings, error) {
	if !slot.Valid() {
		return s.settings, header_uc.ErrInvalidSlot
	}
	return s.settings, nil
}

func (s *stubUsecase) Apply(context.Context, string) (domain.HeaderSettings, error) {
	return s.settings, s.applyErr
}

func (s *stubUsecase) Reset(context.Context, string) (domain.HeaderSettings, error) {
	s.settings = domain.DefaultHeaderSettings()
	return s.settings, s.applyErr
}

func newTestRouter(uc *stubUsecase) http.Handler {
	zlog.Init()
	h := NewHeaderHandler(uc, 1<<20, &zlog.Logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), testSession)))
		})
	})
	r.Get("/settings", h.GetSettings)
	r.Get("/preview", h.GetPreview)
	r.Put("/color", h.SetColor)
	r.Post("/color/reset", h.ResetColor)
	r.Post("/apply", h.Apply)
	r.Post("/reset", h.Reset)
	r.Post("/{slot}", h.Upload)
	r.Delete("/{slot}", h.RemoveImage)
	return r
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestGetSettings(t *testing.T) {
	uc := &stubUsecase{settings: domain.DefaultHeaderSettings()}
	rec := httptest.NewRecorder()
	newTestRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.HeaderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.DefaultHeaderSettings(), resp.Settings)
	assert.Equal(t, header_uc.Preview(resp.Settings), resp.Preview)
}

func TestSetColor(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"color":"#112233"}`, http.StatusOK},
		{"short hex", `{"color":"#abc"}`, http.StatusOK},
		{"not a color", `{"color":"red"}`, http.StatusBadRequest},
		{"missing", `{}`, http.StatusBadRequest},
		{"unknown field", `{"color":"#112233","x":1}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUsecase{settings: domain.DefaultHeaderSettings()}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/color", strings.NewReader(tt.body))
			newTestRouter(uc).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUploadAccepted(t *testing.T) {
	uc := &stubUsecase{}
	body, ct := multipartBody(t, "logo.png", "image/png", pngHeader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logo", body)
	req.Header.Set("Content-Type", ct)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp dto.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "logo", resp.Slot)
	assert.Equal(t, uint64(7), resp.Token)

	require.NotNil(t, uc.uploaded)
	assert.Equal(t, domain.SlotLogo, uc.slot)
	assert.Equal(t, "logo.png", uc.uploaded.Name)
	assert.Equal(t, domain.MIMEPNG, uc.uploaded.MIMEType)
	assert.Equal(t, int64(len(pngHeader)), uc.uploaded.Size)
	assert.Equal(t, pngHeader, uc.uploaded.Data)
}

func TestUploadSniffsUndeclaredType(t *testing.T) {
	uc := &stubUsecase{}
	body, ct := multipartBody(t, "bg", "application/octet-stream", pngHeader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/background", body)
	req.Header.Set("Content-Type", ct)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, uc.uploaded)
	assert.Equal(t, domain.MIMEPNG, uc.uploaded.MIMEType)
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"unknown slot", "/banner", nil, http.StatusNotFound},
		{"unsupported", "/logo", processor.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"too large", "/logo", &processor.FileTooLargeError{Size: 3 << 20, Limit: 2 << 20}, http.StatusRequestEntityTooLarge},
		{"internal", "/logo", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUsecase{uploadErr: tt.err}
			body, ct := multipartBody(t, "a.png", "image/png", pngHeader)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, body)
			req.Header.Set("Content-Type", ct)
			newTestRouter(uc).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUploadTooLargeMessage(t *testing.T) {
	uc := &stubUsecase{uploadErr: &processor.FileTooLargeError{Size: 3 << 20, Limit: 2 << 20}}
	body, ct := multipartBody(t, "a.png", "image/png", pngHeader)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/background", body)
	req.Header.Set("Content-Type", ct)
	newTestRouter(uc).ServeHTTP(rec, req)

	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Ukuran file terlalu besar. Maksimal 2MB.", resp.Message)
}

func TestUploadMissingFile(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logo", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	newTestRouter(&stubUsecase{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveImageUnknownSlot(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubUsecase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/banner", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"quota", fmt.Errorf("%w: %w", errSave, blob.ErrQuotaExceeded), http.StatusInsufficientStorage},
		{"storage", fmt.Errorf("%w: %w", errSave, blob.ErrStorageError), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUsecase{settings: domain.DefaultHeaderSettings(), applyErr: tt.err}
			rec := httptest.NewRecorder()
			newTestRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/apply", nil))
			assert.Equal(t, tt.status, rec.Code)

			if tt.err != nil {
				var resp dto.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, header_uc.MsgSaveFailed, resp.Message)
			}
		})
	}
}
