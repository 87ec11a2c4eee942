package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-storefront-api/internal/application/auth"
	"github.com/go-storefront-api/internal/application/cart"
	"github.com/go-storefront-api/internal/application/catalog"
	"github.com/go-storefront-api/internal/application/order"
	"github.com/go-storefront-api/internal/application/passcode"
	"github.com/go-storefront-api/internal/config"
	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-storefront-api/internal/infrastructure/jwt"
	s3infra "github.com/go-storefront-api/internal/infrastructure/s3"
	"github.com/go-storefront-api/internal/infrastructure/smtp"
	"github.com/go-storefront-api/internal/transport/http/handler"
	appmiddleware "github.com/go-storefront-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	PasscodeRepo *dynamo.PasscodeRepo
	ProductRepo  *dynamo.ProductRepo
	OrderRepo    *dynamo.OrderRepo
	CartRepo     *dynamo.CartRepo
	S3Store      *s3infra.Store
	Mailer       smtp.Mailer
	JWTProvider  *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
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

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	passcodeSvc := passcode.NewService(passcode.ServiceDeps{
		UserRepo:     deps.UserRepo,
		PasscodeRepo: deps.PasscodeRepo,
		Mailer:       deps.Mailer,
		TokenSigner:  deps.JWTProvider,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:      deps.UserRepo,
		TokenProvider: deps.JWTProvider,
		PasscodeSvc:   passcodeSvc,
	})
	catalogSvc := catalog.NewService(deps.ProductRepo, deps.S3Store)
	orderSvc := order.NewService(deps.OrderRepo, deps.ProductRepo)
	cartSvc := cart.NewService(deps.CartRepo, deps.ProductRepo, orderSvc)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(catalogSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	cartH := handler.NewCartHandler(cartSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.SignUp)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/otp/request", authH.RequestOTP)
		r.With(sensitiveRL.Limit).Post("/auth/otp/verify", authH.VerifyOTP)
		r.Get("/auth/session", authH.Session)
		r.Get("/products", productH.List)
		r.Get("/products/{id}", productH.Get)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/orders", orderH.Create)
			r.Get("/orders/mine", orderH.ListMine)

			r.Post("/cart/items", cartH.AddItem)
			r.Get("/cart", cartH.List)
			r.Put("/cart/items/{id}", cartH.UpdateItem)
			r.Delete("/cart/items/{id}", cartH.RemoveItem)
			r.Delete("/cart", cartH.Clear)
			r.Post("/cart/checkout", cartH.Checkout)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/products", productH.Create)
				r.Put("/products/{id}", productH.Update)
				r.Delete("/products/{id}", productH.Delete)
				r.Post("/products/{id}/image", productH.UploadImage)

				r.Get("/orders", orderH.List)
				r.Put("/orders/{id}", orderH.Update)
			})
		})
	})

	return r
}
