package router

import (
	"time"

	"sistemainventario/internal/config"
	"sistemainventario/internal/handler"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/middleware"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb may be nil, which disables the snapshot cache.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPorMinuto, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	cache := infra.NewCacheSnapshots(rdb, cfg.SnapshotCacheTTL)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	nombreRepo := repository.NewNombreProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	compraRepo := repository.NewEntradaCompraRepository(db)
	ajusteRepo := repository.NewAjusteRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	historialRepo := repository.NewHistorialPrecioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	coordinador := service.NewCoordinadorStock(productoRepo, ajusteRepo, facturaRepo)
	costeo := service.NewMotorCosteo(compraRepo, productoRepo, historialRepo)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, nombreRepo, historialRepo, cache)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	nombreSvc := service.NewNombreProductoService(nombreRepo, categoriaRepo)
	clienteSvc := service.NewClienteService(clienteRepo, facturaRepo)
	compraSvc := service.NewCompraService(compraRepo, coordinador, costeo, cache)
	ajusteSvc := service.NewAjusteService(ajusteRepo, db, coordinador, cache)
	facturaSvc := service.NewFacturaService(facturaRepo, clienteRepo, coordinador, cache, cfg)
	reporteSvc := service.NewReporteService(productoRepo, facturaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	nombresH := handler.NewNombresProductoHandler(nombreSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	ajustesH := handler.NewAjustesHandler(ajusteSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/auth/login", middleware.RateLimiter(20, time.Minute), authH.Login)

	const (
		admin     = model.RolAdministrador
		vendedor  = model.RolVendedor
		bodeguero = model.RolBodeguero
	)
	todos := middleware.RequireRole(admin, vendedor, bodeguero)
	soloAdmin := middleware.RequireRole(admin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		// Catalog: everyone reads, administrador writes
		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/por-agotarse", todos, productosH.PorAgotarse)
		v1.GET("/productos/:id", todos, productosH.ObtenerPorID)
		v1.GET("/productos/:id/snapshot", todos, productosH.Snapshot)
		v1.GET("/productos/:id/historial-precios", todos, productosH.HistorialPrecios)
		prods := v1.Group("/productos", soloAdmin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Eliminar)
			prods.PATCH("/:id/desactivar", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		v1.GET("/categorias", todos, categoriasH.Listar)
		v1.GET("/categorias/:id", todos, categoriasH.ObtenerPorID)
		categorias := v1.Group("/categorias", soloAdmin)
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Eliminar)
		}

		v1.GET("/nombres-producto", todos, nombresH.Listar)
		v1.GET("/nombres-producto/:id", todos, nombresH.ObtenerPorID)
		nombres := v1.Group("/nombres-producto", soloAdmin)
		{
			nombres.POST("", nombresH.Crear)
			nombres.PUT("/:id", nombresH.Actualizar)
			nombres.DELETE("/:id", nombresH.Eliminar)
		}

		// Stock ledgers: bodeguero and administrador
		stock := middleware.RequireRole(admin, bodeguero)
		v1.POST("/compras", stock, comprasH.Registrar)
		v1.GET("/compras", stock, comprasH.Listar)
		v1.GET("/compras/:id", stock, comprasH.ObtenerPorID)
		v1.POST("/ajustes", stock, ajustesH.Registrar)
		v1.GET("/ajustes", stock, ajustesH.Listar)

		// Sales: vendedor and administrador
		ventas := middleware.RequireRole(admin, vendedor)
		clientes := v1.Group("/clientes", ventas)
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.ObtenerPorID)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", soloAdmin, clientesH.Eliminar)
		}

		facturas := v1.Group("/facturas", ventas)
		{
			facturas.POST("", facturasH.Crear)
			facturas.GET("", facturasH.Listar)
			facturas.GET("/:id", facturasH.ObtenerPorID)
			facturas.GET("/:id/pdf", facturasH.PDF)
			facturas.POST("/:id/completar", facturasH.Completar)
			facturas.POST("/:id/lineas", facturasH.AgregarLinea)
			facturas.DELETE("/:id/lineas/:producto_id", facturasH.EliminarLinea)
			facturas.POST("/:id/anular", soloAdmin, facturasH.Anular)
		}

		reportes := v1.Group("/reportes", soloAdmin)
		{
			reportes.GET("/ventas-dia", reportesH.VentasDia)
			reportes.GET("/por-agotarse", reportesH.PorAgotarse)
			reportes.GET("/inventario", reportesH.Inventario)
			reportes.GET("/inventario.xlsx", reportesH.InventarioXLSX)
		}
	}

	return r
}
