package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"storefront/internal/http-server/handler/dashboard"
	"storefront/internal/http-server/handler/form"
	"storefront/internal/http-server/handler/header"
	"storefront/internal/http-server/handler/notification"
	"storefront/internal/http-server/handler/page"
	"storefront/internal/http-server/handler/session"
	"storefront/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	SessionHandler      *session.SessionHandler
	PageHandler         *page.PageHandler
	HeaderHandler       *header.HeaderHandler
	FormHandler         *form.FormHandler
	DashboardHandler    *dashboard.DashboardHandler
	NotificationHandler *notification.NotificationHandler
}

func SetupRouter(h *Handler, staticDir, templatesDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/static/") {
				middleware.LoggingMiddleware(next).ServeHTTP(w, r)
			} else {
				next.ServeHTTP(w, r)
			}
		})
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				next.ServeHTTP(w, r)
			})
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionMiddleware)

			r.Get("/session", h.SessionHandler.Get)
			r.Delete("/session/user", h.SessionHandler.SignOut)

			r.Route("/pages", func(r chi.Router) {
				r.Get("/", h.PageHandler.State)
				r.Post("/{page}", h.PageHandler.Navigate)
			})

			r.Route("/header", func(r chi.Router) {
				r.Get("/settings", h.HeaderHandler.GetSettings)
				r.Get("/preview", h.HeaderHandler.GetPreview)
				r.Put("/color", h.HeaderHandler.SetColor)
				r.Post("/color/reset", h.HeaderHandler.ResetColor)
				r.Post("/apply", h.HeaderHandler.Apply)
				r.Post("/reset", h.HeaderHandler.Reset)
				r.Post("/{slot}", h.HeaderHandler.Upload)
				r.Delete("/{slot}", h.HeaderHandler.RemoveImage)
			})

			r.Route("/forms/{form}", func(r chi.Router) {
				r.Post("/", h.FormHandler.Submit)
				r.Post("/fields/{field}", h.FormHandler.CheckField)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.DashboardHandler.Orders)
				r.Get("/fragment", h.DashboardHandler.OrdersFragment)
			})
			r.Get("/reports/charts", h.DashboardHandler.Charts)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.NotificationHandler.List)
				r.Delete("/{id}", h.NotificationHandler.Dismiss)
			})
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		serveHTML(w, r, templatesDir)
	})

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/static/") && !strings.HasPrefix(r.URL.Path, "/api/") {
			serveHTML(w, r, templatesDir)
		} else {
			http.NotFound(w, r)
		}
	})

	return r
}

func serveHTML(w http.ResponseWriter, r *http.Request, templatesDir string) {
	indexPath := filepath.Join(templatesDir, "index.html")

	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		http.Error(w, "HTML template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, indexPath)
}
