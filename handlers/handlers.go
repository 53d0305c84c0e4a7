// ABOUTME: HTTP handlers for the LMS web front-end
// ABOUTME: Wires backend client, session gateway, catalog cache and views into page handlers

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"github.com/MohamedIjlal27/LMS/cache"
	"github.com/MohamedIjlal27/LMS/config"
	"github.com/MohamedIjlal27/LMS/middleware"
	"github.com/MohamedIjlal27/LMS/services"
	"github.com/MohamedIjlal27/LMS/views"
)

type Handler struct {
	cfg          *config.Config
	cache        cache.Store
	api          *services.APIClient
	gateway      *services.Gateway
	catalog      *services.Catalog
	notifier     *services.Notifier
	images       *services.CourseImages
	views        *views.Renderer
	metrics      *middleware.Metrics
	loginLimiter *middleware.RateLimiter
}

// NewHandler builds every dependency from cfg. Uploads stay disabled unless
// an upload bucket is configured.
func NewHandler(cfg *config.Config, store cache.Store) (*Handler, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	api := services.NewAPIClient(cfg.APIURL, cfg.BreakerFailures)
	sessions := services.NewSessionStore(cfg.SessionSecret, cfg.CookieSecure)

	h := &Handler{
		cfg:      cfg,
		cache:    store,
		api:      api,
		gateway:  services.NewGateway(api, sessions, cfg.SessionTTLDays, cfg.RememberMeTTLDays),
		catalog:  services.NewCatalog(api, store, cfg.CatalogTTL()),
		notifier: services.NewNotifier(cfg.SessionSecret, cfg.CookieSecure),
		views:    renderer,
		metrics:  middleware.NewMetrics(),
	}

	if cfg.RateLimitEnabled {
		h.loginLimiter = middleware.NewRateLimiter(cfg.RateLimitLogin, time.Minute)
	}

	if cfg.UploadConfigured() {
		uploader, err := services.NewS3Uploader(cfg.UploadBucket, cfg.UploadRegion, cfg.UploadEndpoint, cfg.UploadPublicURL)
		if err != nil {
			return nil, fmt.Errorf("configuring uploads: %w", err)
		}
		h.images = services.NewCourseImages(uploader, cfg.UploadMaxBytes)
	}

	return h, nil
}

// SetUploader replaces the image uploader, enabling uploads.
func (h *Handler) SetUploader(u services.Uploader) {
	h.images = services.NewCourseImages(u, h.cfg.UploadMaxBytes)
}

// Gateway exposes the auth gateway for the session middleware.
func (h *Handler) Gateway() *services.Gateway {
	return h.gateway
}

// token returns the bearer token resolved for this request.
func token(r *http.Request) string {
	return middleware.FromContext(r.Context()).Token
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, title string, data any) views.Page {
	return views.Page{
		Title:     title,
		Path:      r.URL.Path,
		Auth:      middleware.FromContext(r.Context()),
		Flashes:   h.notifier.Pop(w, r),
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		Data:      data,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	h.views.Render(w, status, name, h.page(w, r, title, data))
}

type errorData struct {
	Status  int
	Message string
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error", http.StatusText(status), errorData{Status: status, Message: message})
}

// NotFound renders the 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

// expired handles a 401 from the backend on a signed-in request: the session
// is cleared and the user is sent to log in again. Returns false for any
// other error.
func (h *Handler) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, services.ErrUnauthorized) {
		return false
	}
	msg := h.gateway.HandleUnauthorized(w)
	h.notifier.Error(w, r, msg)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	return true
}

// MetricsHandler serves Prometheus metrics. It is mounted on its own
// listener, never on Router.
func (h *Handler) MetricsHandler() http.Handler {
	return h.metrics.Handler()
}

// statusFor picks the HTTP status for a page whose fetch failed.
func statusFor(err error) int {
	var apiErr *services.APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrTransport):
		return http.StatusBadGateway
	case errors.As(err, &apiErr) && apiErr.Status >= 500:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// failureStatus is statusFor for pages that cannot render without the data.
func failureStatus(err error) int {
	if status := statusFor(err); status != http.StatusOK {
		return status
	}
	return http.StatusBadGateway
}

// mutated finishes a create, update or delete: a flash plus a redirect to the list.
func (h *Handler) mutated(w http.ResponseWriter, r *http.Request, target, message string) {
	h.notifier.Success(w, r, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// logFailure records a failed backend call with the request's correlation id.
func logFailure(ctx context.Context, action string, err error) {
	slog.Error(action+" failed", "request_id", middleware.RequestID(ctx), "error", err)
}
