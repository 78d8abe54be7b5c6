package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/controllers"
	"github.com/yeremiapane/digital-menu/hub"
	"github.com/yeremiapane/digital-menu/middlewares"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	DB             *gorm.DB
	JWT            *utils.JWTManager
	Verifier       services.PaymentVerifier
	Blobs          services.BlobStore
	QRGenerator    services.QRGenerator
	Cache          services.Cache
	Hub            *hub.Hub
	UploadDir      string
	FrontendURL    string
	AllowedOrigins []string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.AllowedOrigins))

	if deps.Hub == nil {
		deps.Hub = hub.New()
	}
	if deps.QRGenerator == nil {
		deps.QRGenerator = services.DefaultQRGenerator{}
	}

	// uploads only ever serves images
	if deps.UploadDir != "" {
		uploads := r.Group("/uploads")
		uploads.Use(func(c *gin.Context) {
			if !controllers.IsImagePath(c.Request.URL.Path) {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
		})
		uploads.Static("/", deps.UploadDir)
	}

	orderSvc := services.NewOrderService(deps.DB)
	tableSvc := services.NewTableService(deps.DB)
	paymentSvc := services.NewPaymentService(deps.DB, deps.Verifier)
	catalogSvc := services.NewCatalogService(deps.DB, deps.Blobs)
	qrSvc := services.NewQRCodeService(deps.DB, deps.Blobs, deps.QRGenerator, deps.FrontendURL)
	statsSvc := services.NewStatisticsService(deps.DB, deps.Cache)

	orderCtrl := controllers.NewOrderController(orderSvc, statsSvc, deps.Hub)
	tableCtrl := controllers.NewTableController(tableSvc, deps.Hub)
	paymentCtrl := controllers.NewPaymentController(paymentSvc, statsSvc, deps.Hub)
	categoryCtrl := controllers.NewCategoryController(catalogSvc)
	menuCtrl := controllers.NewMenuController(catalogSvc)
	qrCtrl := controllers.NewQRController(qrSvc)
	statsCtrl := controllers.NewStatisticsController(statsSvc)
	wsCtrl := controllers.NewWSController(deps.Hub, deps.AllowedOrigins)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// staff dashboards
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(deps.JWT), wsCtrl.Connect)

	api := r.Group("/api/v1")
	auth := middlewares.AuthMiddleware(deps.JWT)

	// ----------------------------------------------------------------
	//                      ORDERS
	// ----------------------------------------------------------------
	orders := api.Group("/orders")
	{
		orders.POST("", orderCtrl.CreateOrder)
		orders.GET("/:id", orderCtrl.GetOrderByID)
		orders.PATCH("/:id", orderCtrl.UpdateOrder)
		orders.DELETE("/:id", orderCtrl.DeleteOrder)

		orders.GET("", auth, orderCtrl.GetAllOrders)
		orders.PATCH("/:id/status", auth, orderCtrl.UpdateOrderStatus)
		orders.GET("/table/:tableId", auth, orderCtrl.GetOrdersByTable)
		orders.GET("/status/:status", auth, orderCtrl.GetOrdersByStatus)
	}

	// ----------------------------------------------------------------
	//                      PAYMENTS
	// ----------------------------------------------------------------
	payments := api.Group("/payments")
	payments.Use(middlewares.PaymentRateLimiter())
	{
		payments.POST("/initiate", paymentCtrl.InitiatePayment)
		payments.GET("/verify", paymentCtrl.VerifyPayment)
		payments.GET("/status/:orderId", paymentCtrl.GetPaymentStatus)
		payments.POST("/cash", paymentCtrl.CashPayment)
		payments.PATCH("/:id/confirm", auth, middlewares.RequireRoles(middlewares.RoleStaff), paymentCtrl.ConfirmCashPayment)
	}

	// ----------------------------------------------------------------
	//                      TABLES
	// ----------------------------------------------------------------
	tables := api.Group("/tables")
	{
		tables.GET("", tableCtrl.GetAllTables)
		tables.GET("/:id", tableCtrl.GetTableByID)
		tables.POST("", auth, tableCtrl.CreateTable)
		tables.PATCH("/:id", auth, tableCtrl.UpdateTable)
		tables.DELETE("/:id", auth, tableCtrl.DeleteTable)
		tables.PATCH("/:id/status", auth, tableCtrl.UpdateTableStatus)
	}

	// ----------------------------------------------------------------
	//                      CATALOG
	// ----------------------------------------------------------------
	categories := api.Group("/categories")
	{
		categories.GET("", categoryCtrl.GetAllCategories)
		categories.GET("/:id", categoryCtrl.GetCategoryByID)
		categories.POST("", auth, categoryCtrl.CreateCategory)
		categories.PATCH("/:id", auth, categoryCtrl.UpdateCategory)
		categories.POST("/:id/thumbnail", auth, categoryCtrl.UploadThumbnail)
		categories.DELETE("/:id", auth, categoryCtrl.DeleteCategory)
	}

	menu := api.Group("/menu")
	{
		menu.GET("", menuCtrl.GetAllMenus)
		menu.GET("/:id", menuCtrl.GetMenuByID)
		menu.POST("", auth, menuCtrl.CreateMenu)
		menu.PATCH("/:id", auth, menuCtrl.UpdateMenu)
		menu.POST("/:id/image", auth, menuCtrl.UploadImage)
		menu.DELETE("/:id", auth, menuCtrl.DeleteMenu)
	}

	qr := api.Group("/qr")
	{
		qr.GET("", qrCtrl.GetActiveQR)
		qr.POST("/upload", auth, qrCtrl.UploadQR)
		qr.POST("/generate", auth, qrCtrl.GenerateQR)
	}

	// ----------------------------------------------------------------
	//                      ADMIN
	// ----------------------------------------------------------------
	stats := api.Group("/stats", auth, middlewares.RequireRoles())
	{
		stats.GET("/dashboard", statsCtrl.GetDashboardStats)
		stats.GET("/overview", statsCtrl.GetOverview)
		stats.GET("/weekly-revenue", statsCtrl.GetWeeklyRevenue)
		stats.GET("/monthly-revenue", statsCtrl.GetMonthlyRevenue)
		stats.GET("/revenue-by-category", statsCtrl.GetRevenueByCategory)
		stats.GET("/year-over-year", statsCtrl.GetYearOverYear)
		stats.GET("/hourly-distribution", statsCtrl.GetHourlyDistribution)
	}

	return r
}
