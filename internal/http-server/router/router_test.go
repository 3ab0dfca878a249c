package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storefront/internal/broker"
	"storefront/internal/broker/memory"
	"storefront/internal/domain"
	dashboard_h "storefront/internal/http-server/handler/dashboard"
	"storefront/internal/http-server/handler/dto"
	form_h "storefront/internal/http-server/handler/form"
	header_h "storefront/internal/http-server/handler/header"
	notification_h "storefront/internal/http-server/handler/notification"
	page_h "storefront/internal/http-server/handler/page"
	session_h "storefront/internal/http-server/handler/session"
	"storefront/internal/http-server/middleware"
	"storefront/internal/repository/blob/file"
	dashboard_uc "storefront/internal/usecase/dashboard"
	form_uc "storefront/internal/usecase/form"
	header_uc "storefront/internal/usecase/header"
	"storefront/internal/usecase/notify"
	"storefront/internal/usecase/page"
	"storefront/internal/usecase/processor"
	"storefront/internal/usecase/settings"
	"storefront/internal/usecase/submission"
	"storefront/internal/usecase/upload"
	"storefront/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type testServer struct {
	router    http.Handler
	presenter *notify.Presenter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	zlog.Init()
	logger := &zlog.Logger

	repo, err := file.NewBlobRepository(t.TempDir(), 1<<20)
	require.NoError(t, err)

	b := memory.New(domain.KafkaTopicSubmissions, 0, 16)
	presenter := notify.NewPresenter(time.Minute, logger)

	coordinator := upload.NewCoordinator(
		processor.NewImageProcessor(domain.FormatJPEG, domain.DefaultEncodeQuality, logger),
		map[domain.Slot]domain.Target{
			domain.SlotBackground: {MaxWidth: 800, MaxHeight: 200, MaxBytes: 2 << 20},
			domain.SlotLogo:       {MaxWidth: 120, MaxHeight: 40, MaxBytes: 1 << 20},
		}, 2, logger)

	headerService := header_uc.NewService(settings.NewStore(repo, logger), coordinator, presenter, domain.SessionLimits{}, logger)
	formService := form_uc.NewService(broker.NewSubmissionPublisher(b, retry.Strategy{}), presenter, logger)
	w := worker.NewWorker(b, submission.NewApplier(repo, presenter, logger), 1, retry.Strategy{}, logger)
	orders := dashboard_uc.NewOrders()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		coordinator.Close()
		b.Close()
	})

	h := &Handler{
		SessionHandler:      session_h.NewSessionHandler(repo, logger),
		PageHandler:         page_h.NewPageHandler(page.NewRegistry(nil, domain.SessionLimits{}, logger), logger),
		HeaderHandler:       header_h.NewHeaderHandler(headerService, 4<<20, logger),
		FormHandler:         form_h.NewFormHandler(formService, logger),
		DashboardHandler:    dashboard_h.NewDashboardHandler(orders, dashboard_uc.Charts, logger),
		NotificationHandler: notification_h.NewNotificationHandler(presenter, logger),
	}

	templates := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templates, "index.html"), []byte("<html>shop</html>"), 0o644))

	return &testServer{
		router:    SetupRouter(h, t.TempDir(), templates),
		presenter: presenter,
	}
}

func (s *testServer) do(method, path, session, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get(middleware.SessionHeader))
}

func TestIndexFallback(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/", "/orders"} {
		rec := s.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "shop", path)
	}
}

func TestSessionIsIssued(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/session", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, rec.Header().Get(middleware.SessionHeader))
}

func TestPagesRoutes(t *testing.T) {
	s := newTestServer(t)
	const session = "11111111-2222-4333-8444-555555555555"

	rec := s.do(http.MethodPost, "/api/pages/menu", session, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/pages", session, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.PageMenu, resp.State.Current)
}

func TestHeaderRoutes(t *testing.T) {
	s := newTestServer(t)
	const session = "21111111-2222-4333-8444-555555555555"

	rec := s.do(http.MethodPut, "/api/header/color", session, `{"color":"#123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/header/apply", session, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/header/preview?target=applied", session, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#123456")

	rec = s.do(http.MethodDelete, "/api/header/banner", session, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignInFlow(t *testing.T) {
	s := newTestServer(t)
	const session = "31111111-2222-4333-8444-555555555555"

	rec := s.do(http.MethodPost, "/api/forms/sign-in", session, `{"fields":{"email":"nope","password":"123"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/api/forms/sign-in", session, `{"fields":{"email":"budi@example.com","password":"secret1"}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		rec := s.do(http.MethodGet, "/api/session", session, "")
		var resp dto.SessionResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			return false
		}
		return resp.User != nil && resp.User.Email == "budi@example.com"
	}, 2*time.Second, 10*time.Millisecond)

	rec = s.do(http.MethodGet, "/api/notifications", session, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var notes dto.NotificationsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&notes))
	assert.NotEmpty(t, notes.Notifications)

	rec = s.do(http.MethodDelete, "/api/session/user", session, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/session", session, "")
	var resp dto.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp.User)
}

func TestOrdersRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/orders?status=pending", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrdersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Total)

	rec = s.do(http.MethodGet, "/api/orders/fragment", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	rec = s.do(http.MethodGet, "/api/reports/charts", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
