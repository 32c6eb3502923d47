package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-verify/internal/application/auth"
	"github.com/go-otp-verify/internal/application/notification"
	"github.com/go-otp-verify/internal/application/session"
	"github.com/go-otp-verify/internal/config"
	"github.com/go-otp-verify/internal/infrastructure/smtp"
	"github.com/go-otp-verify/internal/infrastructure/sns"
	"github.com/go-otp-verify/internal/transport/http/handler"
	appmiddleware "github.com/go-otp-verify/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	SessionRepo      SessionRepository
	VerificationRepo VerificationRepository
	NotificationRepo NotificationRepository
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender // nil disables phone delivery
	JWTProvider      TokenProvider
}

// NewRouter builds the application router. ctx bounds the rate limiter's background cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on endpoints that send or check codes.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	notifSvc := notification.NewService(deps.NotificationRepo)
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo: deps.SessionRepo,
		UserRepo:    deps.UserRepo,
	})
	authDeps := auth.ServiceDeps{
		UserRepo:         deps.UserRepo,
		VerificationRepo: deps.VerificationRepo,
		SessionRepo:      deps.SessionRepo,
		Mailer:           deps.Mailer,
		JWTProvider:      deps.JWTProvider,
		Notifier:         notifSvc,
		OTPTTL:           cfg.OTPTTL,
		MaxAttempts:      cfg.OTPMaxAttempts,
		LoginOTPRequired: cfg.LoginOTPRequired,
	}
	if deps.SMSSender != nil {
		authDeps.SMSSender = deps.SMSSender
	}
	authSvc := auth.NewService(authDeps)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Group(func(r chi.Router) {
		r.Use(sensitiveRL.Limit)

		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/verify-login-otp", authH.VerifyLoginOTP)
		r.Post("/send-email-otp", authH.SendEmailOTP)
		r.Post("/send-phone-otp", authH.SendPhoneOTP)
		r.Post("/verify-email-otp", authH.VerifyEmailOTP)
		r.Post("/verify-phone-otp", authH.VerifyPhoneOTP)
	})

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(deps.JWTProvider))

		r.Get("/sessions/current", sessionH.GetCurrent)
		r.Delete("/sessions/current", sessionH.Logout)
		r.Get("/notifications", notifH.ListUnread)
		r.Put("/notifications/{id}", notifH.MarkAsRead)
	})

	return r
}
