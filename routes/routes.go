package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/controllers"
	"github.com/Performile1/Performile-Version-1-sub000/middlewares"
	"github.com/Performile1/Performile-Version-1-sub000/rabbitmq"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
	"github.com/Performile1/Performile-Version-1-sub000/services"
)

// Wiring holds the built service graph so main can also hand pieces to the
// background jobs and the event consumer.
type Wiring struct {
	Cache   *services.ScoreCache
	Reviews *services.ReviewService
	Orders  *services.OrderService
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *configs.Config, events *rabbitmq.RabbitMQ) *Wiring {
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"success": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	courierRepo := repository.NewCourierRepository(db)
	scoreRepo := repository.NewTrustScoreRepository(db)
	checkoutRepo := repository.NewCheckoutRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	// Services
	metrics := services.NewMetricsService(cfg, orderRepo, reviewRepo, courierRepo)
	calc := services.NewTrustScoreService(cfg)
	cache := services.NewScoreCache(cfg, metrics, calc, scoreRepo, courierRepo)
	gate := services.NewSubscriptionGate(cfg, subRepo)
	ranking := services.NewRankingService(db, cache, courierRepo, checkoutRepo)
	analytics := services.NewAnalyticsService(checkoutRepo, gate)
	orders := services.NewOrderService(db, orderRepo, courierRepo, cache, events)
	reviews := services.NewReviewService(cfg, db, reviewRepo, orderRepo, cache, events)

	// Controllers
	scoreCtrl := controllers.NewTrustScoreController(cache, gate, scoreRepo, courierRepo, subRepo)
	checkoutCtrl := controllers.NewCheckoutController(ranking, gate, subRepo, checkoutRepo)
	analyticsCtrl := controllers.NewAnalyticsController(analytics, courierRepo, subRepo)
	orderCtrl := controllers.NewOrderController(orders, subRepo)
	reviewCtrl := controllers.NewReviewController(reviews)

	// Trust scores (public reads, token optional for tier resolution)
	ts := r.Group("/trustscores", middlewares.OptionalAuth(cfg.JWTSecret))
	{
		ts.GET("", scoreCtrl.List)
		ts.GET("/:id", scoreCtrl.GetOne)
		ts.POST("/compare", scoreCtrl.Compare)
	}
	r.PUT("/trustscores/:id/update",
		middlewares.AuthMiddleware(cfg.JWTSecret, "courier", "admin"), scoreCtrl.ForceRefresh)

	// Checkout (rank requires a merchant; track/select are called by the
	// storefront on the consumer's behalf)
	r.POST("/checkout/rank",
		middlewares.AuthMiddleware(cfg.JWTSecret, "merchant", "admin"), checkoutCtrl.Rank)
	ca := r.Group("/checkout-analytics")
	{
		ca.POST("/track", checkoutCtrl.Track)
		ca.POST("/select", checkoutCtrl.Select)
	}

	// Dashboards
	r.GET("/courier/checkout-analytics",
		middlewares.AuthMiddleware(cfg.JWTSecret, "courier", "admin"), analyticsCtrl.ForCourier)
	r.GET("/merchant/checkout-analytics",
		middlewares.AuthMiddleware(cfg.JWTSecret, "merchant", "admin"), analyticsCtrl.ForMerchant)

	// Orders
	u := r.Group("/orders", middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		u.POST("", orderCtrl.Create)
		u.GET("/:id", orderCtrl.Detail)
	}
	r.PATCH("/courier/orders/:id/status",
		middlewares.AuthMiddleware(cfg.JWTSecret, "courier"), orderCtrl.CourierUpdateStatus)

	// Reviews
	r.POST("/reviews",
		middlewares.AuthMiddleware(cfg.JWTSecret, "consumer"), reviewCtrl.Create)

	// Admin
	admin := r.Group("/admin", middlewares.AuthMiddleware(cfg.JWTSecret, "admin"))
	{
		admin.POST("/trustscores/refresh", scoreCtrl.RefreshAll)
		admin.PATCH("/reviews/:id/status", reviewCtrl.Moderate)
		admin.PATCH("/orders/:id/status", orderCtrl.AdminSetStatus)
	}

	return &Wiring{Cache: cache, Reviews: reviews, Orders: orders}
}
