package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sidesales/sidesales-backend/internal/api/handlers"
	custommiddleware "github.com/sidesales/sidesales-backend/internal/api/middleware"
	"github.com/sidesales/sidesales-backend/internal/config"
	"github.com/sidesales/sidesales-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	authService *service.AuthService,
	userService *service.UserService,
	purchaseService *service.PurchaseService,
	saleService *service.SaleService,
	dashboardService *service.DashboardService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	authHandler := handlers.NewAuthHandler(authService)
	loginLimiter := custommiddleware.NewRateLimiter(cfg.Auth.LoginRateLimit)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.With(loginLimiter.Handler).Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireAuth(authService))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})

			dashboardHandler := handlers.NewDashboardHandler(dashboardService)
			r.Get("/dashboard", dashboardHandler.Dashboard)

			r.Route("/purchase", func(r chi.Router) {
				purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
				r.Get("/", purchaseHandler.ListPurchases)
				r.Post("/", purchaseHandler.CreatePurchase)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", purchaseHandler.GetPurchase)
					r.Put("/", purchaseHandler.UpdatePurchase)
					r.Delete("/", purchaseHandler.DeletePurchase)

					r.Post("/contribution", purchaseHandler.AddContribution)
					r.With(custommiddleware.ValidateChildIDMiddleware).
						Delete("/contribution/{childId}", purchaseHandler.DeleteContribution)

					r.Post("/cost", purchaseHandler.AddAdditionalCost)
					r.With(custommiddleware.ValidateChildIDMiddleware).
						Delete("/cost/{childId}", purchaseHandler.DeleteAdditionalCost)
				})
			})

			r.Route("/sale", func(r chi.Router) {
				saleHandler := handlers.NewSaleHandler(saleService)
				r.Get("/", saleHandler.ListSales)
				r.Post("/", saleHandler.CreateSale)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", saleHandler.GetSale)
					r.Put("/", saleHandler.UpdateSale)
					r.Delete("/", saleHandler.DeleteSale)

					r.Post("/payment", saleHandler.AddPayment)
					r.With(custommiddleware.ValidateChildIDMiddleware).
						Delete("/payment/{childId}", saleHandler.DeletePayment)
				})
			})

			r.Route("/user", func(r chi.Router) {
				userHandler := handlers.NewUserHandler(userService)
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", userHandler.GetUser)
					r.Put("/", userHandler.UpdateUser)
					r.Put("/password", userHandler.SetPassword)
				})
			})
		})
	})

	return r
}
