package httpserver

import (
	"context"
	"errors"
	"time"

	"bakereserve-storefront/internal/domain"
	cartsvc "bakereserve-storefront/internal/service/cart"
	catalogsvc "bakereserve-storefront/internal/service/catalog"
	checkoutsvc "bakereserve-storefront/internal/service/checkout"
	ordersvc "bakereserve-storefront/internal/service/order"
	"bakereserve-storefront/internal/service/report"
	sessionsvc "bakereserve-storefront/internal/service/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type SessionService interface {
	Login(ctx context.Context, in sessionsvc.LoginInput) (*domain.Session, error)
	Register(ctx context.Context, in sessionsvc.RegisterInput) (*domain.Session, error)
	Resolve(ctx context.Context, id string) (*domain.Session, error)
	Logout(ctx context.Context, id string) error
}

type CatalogService interface {
	List(ctx context.Context, category domain.Category) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, token string, in catalogsvc.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, token, id string, in catalogsvc.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, token, id string) error
	AdjustStock(ctx context.Context, token, id string, delta int) (*domain.Product, error)
}

type CartService interface {
	View(ctx context.Context, sess *domain.Session) (*cartsvc.View, error)
	AddItem(ctx context.Context, sess *domain.Session, in cartsvc.AddInput) (*cartsvc.View, error)
	UpdateQuantity(ctx context.Context, sess *domain.Session, lineItemID string, quantity int) (*cartsvc.View, error)
	RemoveItem(ctx context.Context, sess *domain.Session, lineItemID string, confirmed bool) (*cartsvc.View, error)
	ToggleSelection(ctx context.Context, sess *domain.Session, lineItemID string) (*cartsvc.View, error)
	SelectAll(ctx context.Context, sess *domain.Session, selected bool) (*cartsvc.View, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, sess *domain.Session, in checkoutsvc.Input) (*checkoutsvc.Result, error)
	ReturnFromPayment(ctx context.Context, sess *domain.Session, status, intentID string) (*checkoutsvc.PaymentStatus, error)
	Attempts(ctx context.Context, status string, limit int) ([]domain.PaymentAttempt, error)
}

type OrderService interface {
	ListMine(ctx context.Context, sess *domain.Session, tab string) ([]domain.Order, error)
	ListAll(ctx context.Context, sess *domain.Session, filter ordersvc.Filter) (*ordersvc.Board, error)
	Transition(ctx context.Context, sess *domain.Session, orderID string, target domain.OrderStatus) (*domain.Order, error)
}

type ReportService interface {
	Stats(ctx context.Context, sess *domain.Session, q report.Query) (*report.Stats, error)
	Dashboard(ctx context.Context, sess *domain.Session, q report.Query) (*report.Dashboard, error)
}

// Pinger is a dependency checked by the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the services the router dispatches to.
type Deps struct {
	Sessions SessionService
	Catalog  CatalogService
	Cart     CartService
	Checkout CheckoutService
	Orders   OrderService
	Reports  ReportService

	DB       Pinger
	Cache    Pinger
	Gatherer prometheus.Gatherer

	CORSOrigins  []string
	CookieSecure bool
}

func (d Deps) validate() error {
	if d.Sessions == nil || d.Catalog == nil || d.Cart == nil || d.Checkout == nil || d.Orders == nil || d.Reports == nil {
		return errors.New("httpserver: all services are required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB, deps.Cache))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	h := &handlers{deps: deps}
	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/register", h.register)
	auth.POST("/logout", h.logout)
	auth.GET("/me", requireSession(deps.Sessions), h.me)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)

	customer := api.Group("", requireSession(deps.Sessions))
	customer.GET("/cart", h.viewCart)
	customer.POST("/cart/items", h.addCartItem)
	customer.PATCH("/cart/items/:id", h.updateCartItem)
	customer.DELETE("/cart/items/:id", h.removeCartItem)
	customer.POST("/cart/items/:id/toggle", h.toggleCartItem)
	customer.POST("/cart/select-all", h.selectAll)
	customer.POST("/checkout", h.checkout)
	customer.GET("/orders", h.myOrders)
	customer.GET("/payment-status", h.paymentStatus)

	admin := api.Group("/admin", requireSession(deps.Sessions), requireAdmin())
	admin.GET("/orders", h.adminOrders)
	admin.PUT("/orders/:id/status", h.transitionOrder)
	admin.GET("/stats", h.stats)
	admin.GET("/dashboard", h.dashboard)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/:id/stock", h.adjustStock)
	admin.GET("/payment-attempts", h.paymentAttempts)

	return router, nil
}
