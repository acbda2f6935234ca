package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/promos"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer needs: health,
// idempotency replay and login rate limiting.
type RedisStore interface {
	pkgredis.Pinger
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	dbP db.Pinger,
	redisStore RedisStore,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	promoService promos.Service,
	checkoutService checkout.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	var (
		idempotencyStore pkgredis.IdempotencyStore
		redisPinger      controllers.Pinger
		rateStore        middleware.RateLimiterStore
	)
	if redisStore != nil {
		idempotencyStore = redisStore
		redisPinger = redisStore
		rateStore = redisStore
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
		r.With(middleware.OptionalAuth(cfg.JWT, sessions, logg)).Get("/me", controllers.AuthMe(authService, logg))
	})

	r.Route("/api/v1/shops", func(r chi.Router) {
		r.Get("/", controllers.ShopList(catalogService, logg))
		r.Get("/{shopId}", controllers.ShopDetail(catalogService, logg))
		r.Get("/{shopId}/products", controllers.ShopProducts(catalogService, logg))
	})
	r.Get("/api/v1/products/{productId}", controllers.ProductDetail(catalogService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/", controllers.CartAdd(cartService, logg))
			r.Put("/", controllers.CartSetQuantity(cartService, logg))
			r.Post("/quote", controllers.CartQuote(checkoutService, logg))
			r.Delete("/{productId}", controllers.CartRemove(cartService, logg))
		})
		r.Post("/promos/validate", controllers.PromoValidate(checkoutService, logg))
		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/promos", func(r chi.Router) {
			r.Get("/", controllers.AdminPromoList(promoService, logg))
			r.Post("/", controllers.AdminPromoCreate(promoService, logg))
			r.Put("/{promoId}", controllers.AdminPromoUpdate(promoService, logg))
			r.Delete("/{promoId}", controllers.AdminPromoDelete(promoService, logg))
		})
		r.Route("/shops", func(r chi.Router) {
			r.Post("/", controllers.AdminShopCreate(catalogService, logg))
			r.Put("/{shopId}", controllers.AdminShopUpdate(catalogService, logg))
			r.Delete("/{shopId}", controllers.AdminShopDelete(catalogService, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(catalogService, logg))
			r.Post("/", controllers.AdminProductCreate(catalogService, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(catalogService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(catalogService, logg))
		})
	})

	return r
}
