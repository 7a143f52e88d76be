package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/notifications"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// TokenService issues tokens at login and decodes them for /me.
type TokenService interface {
	handlers.TokenIssuer
	middlewares.TokenDecoder
}

type Deps struct {
	Log *slog.Logger
	Env string

	Store  handlers.UserStore
	Ping   func(ctx context.Context) error
	Hasher handlers.PasswordHasher
	Tokens TokenService

	// Draining, when set, flips /readyz to 503 during shutdown.
	Draining      func() bool
	// NotifierState, when set, reports the error sink breaker on /readyz.
	NotifierState func() string

	Policy       apperr.StatusPolicy
	StoreTimeout time.Duration
	MaxBodyBytes int64

	Notifier notifications.Notifier

	// optional; without them there is no /metrics and no request metrics
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))

	// a nil *Prom must not reach the translator as a non-nil interface
	var counter middlewares.ErrorCounter
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
		counter = d.Prom
	}

	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())

	// everything after the translator that aborts with c.Error still gets an envelope
	r.Use(middlewares.ErrorTranslator(d.Policy, d.Notifier, counter))
	if d.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))
	}
	r.Use(middlewares.AcceptedBody())

	r.NoRoute(func(ctx *gin.Context) {
		_ = ctx.Error(apperr.NotFound("Route not found"))
	})

	// health
	h := handlers.NewHealthHandler(d.Ping).
		WithDraining(d.Draining).
		WithNotifierState(d.NotifierState)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// docs
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// users
	usersHandler := handlers.NewUsersHandler(d.Store, d.Hasher, d.Policy, d.StoreTimeout)

	r.GET("/users", usersHandler.ListUsers)
	r.GET("/user/:id", usersHandler.GetUserByID)
	r.POST("/user", usersHandler.CreateUser)
	r.PUT("/user/:id", usersHandler.UpdateUser)
	r.DELETE("/user/:id", usersHandler.DeleteUser)

	// auth
	authHandler := handlers.NewAuthHandler(d.Store, d.Hasher, d.Tokens, d.StoreTimeout)
	authMiddleware := middlewares.NewAuthMiddleware(d.Tokens)

	r.POST("/login", authHandler.Login)
	r.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)

	return r
}
