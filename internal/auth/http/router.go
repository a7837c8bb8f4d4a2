package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalstudio/auth-service/internal/auth/service"
	"github.com/vitalstudio/auth-service/pkg/httpx"
	"github.com/vitalstudio/auth-service/pkg/slogx"

	_ "github.com/vitalstudio/auth-service/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	db           Pinger

	AuthService    *service.AuthService
	SessionService *service.SessionService
}

// NewRouter builds a router around the two services. db may be nil when the
// credential store has no connection to probe (the in-memory driver).
func NewRouter(buildVersion string, db Pinger, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		db:           db,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Authentication Service API
//	@version		0.1.0
//	@description	Session-based authentication service: signup, login with optional
//	@description	email two-factor codes, token verification, and revocable logout.
//	@description	Sessions are HS256-signed JWTs carried in an HttpOnly cookie.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:3000
//	@BasePath	/
//
//	@schemes	http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential-bearing endpoints get the strict limit to slow down
	// brute-force and enumeration attempts.
	r.Mux.Handle("POST /signup",
		httpx.Chain(&SignupHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /verify-2fa",
		httpx.Chain(&Verify2FAHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(&LogoutHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Introspection is called service-to-service, so it gets more headroom.
	r.Mux.Handle("POST /verify-token",
		httpx.Chain(&VerifyTokenHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
