package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/vaultguard/internal/auth/service"
	"github.com/aussiebroadwan/vaultguard/internal/auth/store"
	"github.com/aussiebroadwan/vaultguard/pkg/authsdk"
	"github.com/aussiebroadwan/vaultguard/pkg/httpx"
	"github.com/aussiebroadwan/vaultguard/pkg/jwtx"
	"github.com/aussiebroadwan/vaultguard/pkg/slogx"

	_ "github.com/aussiebroadwan/vaultguard/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	gatherer     prometheus.Gatherer

	store       store.Store
	AuthService *service.AuthService
	Cookie      httpx.RefreshCookie
}

// NewRouter builds a router. gatherer may be nil, in which case /metrics is
// not mounted.
func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		gatherer:     gatherer,
		store:        st,
		logger:       logger,
		Cookie:       DefaultRefreshCookie(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// DefaultRefreshCookie scopes the refresh cookie to the auth routes.
func DefaultRefreshCookie() httpx.RefreshCookie {
	return httpx.RefreshCookie{Name: "vg_refresh", Path: "/v1/auth", Secure: true}
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			VaultGuard Authentication Service API
//	@version		0.1.0
//	@description	Email and password accounts with short-lived HS256 access tokens,
//	@description	cookie-borne refresh tokens, password reset and logout.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/vaultguard
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.AuthService, Cookie: r.Cookie}

	r.Mux.HandleFunc("POST /v1/auth/register", h.HandleRegister)
	r.Mux.HandleFunc("POST /v1/auth/login", h.HandleLogin)
	r.Mux.HandleFunc("POST /v1/auth/password-reset", h.HandlePasswordReset)
	r.Mux.HandleFunc("POST /v1/auth/password-reset/confirm", h.HandlePasswordResetConfirm)
	r.Mux.HandleFunc("POST /v1/auth/logout", h.HandleLogout)
	r.Mux.HandleFunc("POST /v1/auth/refresh", h.HandleRefresh)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier, httpx.BearerErrors{
				Missing: authsdk.ErrMissingToken,
				Invalid: authsdk.ErrInvalidToken,
			}),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}
