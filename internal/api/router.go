package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LessonsQueue/QueueManager/internal/api/handler"
	"github.com/LessonsQueue/QueueManager/internal/api/middleware"
	"github.com/LessonsQueue/QueueManager/internal/core/ports"
	"github.com/LessonsQueue/QueueManager/internal/core/token"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	AuthService  ports.AuthService
	UserService  ports.UserService
	QueueService ports.QueueService
	Users        ports.UserRepository
	Issuer       *token.Issuer
	Mongo        *mongo.Database
	Redis        *redis.Client
	Log          zerolog.Logger
}

// route is one row of the routing table. Public routes skip the Auth
// middleware; everything else requires a valid bearer token.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	public  bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("queue_manager"))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	queueHandler := handler.NewQueueHandler(deps.QueueService)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	auth := middleware.Auth(deps.Issuer, deps.Users)

	routes := []route{
		{http.MethodPost, "/auth/register", authHandler.Register, true},
		{http.MethodPost, "/auth/login", authHandler.Login, true},
		{http.MethodPatch, "/auth/verify-email", authHandler.VerifyEmail, true},
		{http.MethodPost, "/auth/resend-verify-email", authHandler.ResendVerifyEmail, true},
		{http.MethodPatch, "/auth/refresh-token", authHandler.RefreshToken, true},
		{http.MethodPost, "/auth/send-reset-password", authHandler.SendResetPassword, true},
		{http.MethodPatch, "/auth/reset-password", authHandler.ResetPassword, true},

		{http.MethodGet, "/users/not-approved", userHandler.ListNotApproved, false},
		{http.MethodPost, "/users/approve", userHandler.Approve, false},
		{http.MethodGet, "/users/me", userHandler.Me, false},
		{http.MethodPatch, "/users/change-pass", userHandler.ChangePassword, false},

		{http.MethodPost, "/queues", queueHandler.Create, false},
		{http.MethodGet, "/queues/:id", queueHandler.FindByID, true},
		{http.MethodGet, "/labs/:labId/queue", queueHandler.FindByLab, true},
		{http.MethodDelete, "/queues/:id", queueHandler.Delete, false},
		{http.MethodPost, "/queues/:id/join", queueHandler.Join, false},
		{http.MethodDelete, "/queues/:id/leave", queueHandler.Leave, false},
		{http.MethodDelete, "/queues/:queueId/remove/:userId", queueHandler.RemoveUser, false},
		{http.MethodPatch, "/queues/:id/resume-status", queueHandler.ResumeStatus, false},

		{http.MethodGet, "/health", healthHandler.Liveness, true},
		{http.MethodGet, "/health/ready", healthDepsHandler.Readiness, true},
	}

	for _, r := range routes {
		if r.public {
			e.Add(r.method, r.path, r.handler)
			continue
		}
		e.Add(r.method, r.path, r.handler, auth)
	}

	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
