package router

import (
	"time"

	"fabricaops/internal/config"
	"fabricaops/internal/handler"
	"fabricaops/internal/middleware"
	"fabricaops/internal/repository"
	"fabricaops/internal/service"
	"fabricaops/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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
	procesoRepo := repository.NewProcesoRepository(db)
	rolloRepo := repository.NewRolloRepository(db)
	loteRepo := repository.NewLoteRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	procesoSvc := service.NewProcesoService(procesoRepo)
	rolloSvc := service.NewRolloService(rolloRepo)
	corteSvc := service.NewCorteService(loteRepo, productoRepo)
	loteSvc := service.NewLoteService(loteRepo, procesoRepo, productoRepo, rolloSvc, corteSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	procesosH := handler.NewProcesosHandler(procesoSvc)
	rollosH := handler.NewRollosHandler(rolloSvc)
	lotesH := handler.NewLotesHandler(loteSvc, corteSvc, cfg.PDFStoragePath)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaRepo)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		procesos := v1.Group("/procesos")
		{
			procesos.POST("", procesosH.Crear)
			procesos.GET("", procesosH.Listar)
			procesos.GET("/:id", procesosH.Obtener)
			procesos.PUT("/:id/etapas", procesosH.ReemplazarEtapas)
		}

		rollos := v1.Group("/rollos")
		{
			rollos.POST("", rollosH.Crear)
			rollos.GET("", rollosH.Listar)
			rollos.GET("/disponibles", rollosH.Disponibles)
			rollos.GET("/:id", rollosH.Obtener)
		}

		lotes := v1.Group("/lotes")
		{
			lotes.POST("", lotesH.Crear)
			lotes.GET("", lotesH.Listar)
			// La distribución cuelga del lote-producto, no del lote
			lotes.PUT("/productos/:id/distribucion", lotesH.GuardarDistribucion)
			lotes.GET("/:id", lotesH.Obtener)
			lotes.PUT("/:id/etapa", lotesH.AvanzarEtapa)
			lotes.PUT("/:id/consumos", lotesH.AjustarConsumo)
			lotes.POST("/:id/finalizar", lotesH.Finalizar)
			lotes.GET("/:id/ficha", lotesH.Ficha)
			lotes.GET("/:id/auditoria", auditoriaH.ListarPorLote)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
