package http

import (
	"net/http"

	"github.com/drughub-api/internal/application/auth"
	"github.com/drughub-api/internal/application/otp"
	"github.com/drughub-api/internal/application/permission"
	"github.com/drughub-api/internal/application/user"
	"github.com/drughub-api/internal/config"
	"github.com/drughub-api/internal/pkg/password"
	"github.com/drughub-api/internal/transport/http/handler"
	appmiddleware "github.com/drughub-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	hasher := password.NewHasher(cfg.BcryptCost)
	resolver := permission.NewResolver(deps.UserRepo, deps.RoleRepo)
	otpSvc := otp.NewService(deps.OTPSecrets, deps.Mailer)
	authSvc, err := auth.NewService(deps.UserRepo, deps.SessionStore, deps.JWTProvider, resolver, otpSvc, hasher)
	if err != nil {
		return nil, err
	}
	userSvc := user.NewService(deps.UserRepo, hasher, otpSvc)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, otpSvc)
	userH := handler.NewUserHandler(userSvc)
	recoveryH := handler.NewPasswordRecoveryHandler(userSvc)

	authMw := appmiddleware.Auth(authSvc)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/signin", authH.SignIn)
		r.With(sensitiveRL.Limit).Post("/auth/send-otp", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/signin/otp", authH.OTPSignIn)
		r.With(sensitiveRL.Limit).Post("/auth/password-recovery", recoveryH.Recover)
		r.With(sensitiveRL.Limit).Post("/auth/reset-password", recoveryH.Reset)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/auth/signout", authH.SignOut)
			r.Get("/auth/sessions", authH.Sessions)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me", userH.UpdateMe)
			r.Put("/users/me/password", userH.ChangePassword)

			// Resource routes guarded by permission tags.
			r.With(appmiddleware.RequirePermissions("view_orders")).
				Get("/orders", handler.ListOrders)
			r.With(appmiddleware.RequirePermissions("edit_products")).
				Put("/products/{id}", handler.UpdateProduct)
		})
	})

	return r, nil
}
