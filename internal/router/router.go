package router

import (
	"time"

	"steelpricing/internal/config"
	"steelpricing/internal/handler"
	"steelpricing/internal/infra"
	"steelpricing/internal/middleware"
	"steelpricing/internal/repository"
	"steelpricing/internal/service"
	"steelpricing/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, fxClient *infra.FXClient) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	priceListRepo := repository.NewPriceListRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	productSvc := service.NewProductService(productRepo)
	priceListSvc := service.NewPriceListService(priceListRepo, productRepo, historyRepo, dispatcher, cfg.NotifyEmail)
	historySvc := service.NewHistoryService(historyRepo, priceListRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(productSvc)
	priceListsH := handler.NewPriceListsHandler(priceListSvc)
	historyH := handler.NewHistoryHandler(historySvc)
	pricesH := handler.NewPricesHandler(productRepo, priceListRepo, rdb, cfg.BaseCurrency)
	fxH := handler.NewFXHandler(fxClient)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, fxClient))

	// Price check and basis rules — no auth required, read-only
	r.GET("/v1/prices/:productId", pricesH.GetPrice)
	r.GET("/v1/basis/:category", handler.BasisRules)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyRole := middleware.RequireRole(middleware.RoleViewer, middleware.RoleManager, middleware.RoleAdmin)
		editRole := middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin)
		adminRole := middleware.RequireRole(middleware.RoleAdmin)

		// Catalog — all authenticated roles can read, admins write
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		products := v1.Group("/products", adminRole)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		// Price lists — reads for everyone, edits for manager/admin
		v1.GET("/pricelists", anyRole, priceListsH.List)
		v1.GET("/pricelists/seed-items", anyRole, priceListsH.SeedItems)
		v1.GET("/pricelists/:id", anyRole, priceListsH.Get)
		pricelists := v1.Group("/pricelists", editRole)
		{
			pricelists.POST("", priceListsH.Create)
			pricelists.POST("/save-as-new", priceListsH.SaveAsNew)
			pricelists.PUT("/:id", priceListsH.Update)
			pricelists.DELETE("/:id", priceListsH.Deactivate)
			pricelists.POST("/:id/copy", priceListsH.Copy)
			pricelists.PUT("/:id/items/:productId/price", priceListsH.SetItemPrice)
			pricelists.POST("/:id/reset", priceListsH.ResetToDefaults)
			pricelists.POST("/:id/bulk-adjust", priceListsH.BulkAdjust)
		}

		// Change history — reads for everyone, exports rate-limited
		v1.GET("/pricelists/:id/history", anyRole, historyH.List)
		v1.GET("/pricelists/:id/history/export.csv", anyRole, middleware.ExportRateLimiter(), historyH.ExportCSV)
		v1.POST("/pricelists/:id/history/export", editRole, middleware.ExportRateLimiter(), historyH.EnqueueExport)

		// FX rates
		v1.GET("/fx/:base/:quote", anyRole, fxH.GetRate)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
