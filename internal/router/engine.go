package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cloudonauts/storefront/pkg/backend"
	"github.com/cloudonauts/storefront/pkg/cart"
	"github.com/cloudonauts/storefront/pkg/catalog"
	"github.com/cloudonauts/storefront/pkg/config"
	"github.com/cloudonauts/storefront/pkg/identity"
	"github.com/cloudonauts/storefront/pkg/session"
	"github.com/cloudonauts/storefront/pkg/storage"
)

// Router owns the view layer. Every collaborator is passed in once at
// construction; handlers hold no ambient state and re-derive everything
// they show from the stores on each request.
type Router struct {
	engine   *gin.Engine
	slots    storage.Store
	cart     *cart.Store
	catalog  *catalog.Cache
	sessions *session.Manager
	api      *backend.Client
	idp      identity.Provider
}

func New(cfg config.Config, slots storage.Store, cartStore *cart.Store, cache *catalog.Cache, sessions *session.Manager, api *backend.Client, idp identity.Provider) *Router {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(session.Middleware(sessions))

	r := &Router{
		engine:   engine,
		slots:    slots,
		cart:     cartStore,
		catalog:  cache,
		sessions: sessions,
		api:      api,
		idp:      idp,
	}
	r.initializeRoutes()
	return r
}

func (r *Router) initializeRoutes() {
	api := r.engine.Group("/api")
	{
		api.GET("/health", r.HealthCheck)

		products := api.Group("/products")
		{
			products.GET("", r.ProductGrid)
			products.GET("/:pid", r.ProductDetail)
		}

		cartGroup := api.Group("/cart")
		{
			cartGroup.GET("", r.CartPage)
			cartGroup.POST("/items", r.AddToCart)
			cartGroup.POST("/items/:pid/increment", r.IncrementCartItem)
			cartGroup.POST("/items/:pid/decrement", r.DecrementCartItem)
			cartGroup.DELETE("/items/:pid", r.RemoveFromCart)
		}

		api.GET("/header", r.HeaderBadge)

		orders := api.Group("/orders")
		orders.Use(RequireAuth())
		{
			orders.GET("", r.OrderHistory)
			orders.POST("", r.PlaceOrder)
			orders.GET("/:orderId", r.OrderConfirmation)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.SignUp)
			auth.POST("/confirm", r.ConfirmSignUp)
			auth.POST("/resend-code", r.ResendCode)
			auth.POST("/login", r.Login)
			auth.POST("/logout", r.Logout)
		}

		api.POST("/add-product", r.AddProduct)
	}
}

// Engine exposes the underlying gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
