package router

import (
	"time"

	"cafehenola/internal/config"
	"cafehenola/internal/handler"
	"cafehenola/internal/infra"
	"cafehenola/internal/middleware"
	"cafehenola/internal/model"
	"cafehenola/internal/repository"
	"cafehenola/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil; the services then rely on row locks alone.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	var locker service.Locker
	if rdb != nil {
		locker = infra.NewRedisLocker(rdb, cfg.LockTTL())
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	catalogoRepo := repository.NewCatalogoRepository(db)
	secuenciaRepo := repository.NewSecuenciaRepository()
	inventarioRepo := repository.NewInventarioRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	contratoRepo := repository.NewContratoRepository(db)
	depositoRepo := repository.NewDepositoRepository(db)
	salidaRepo := repository.NewSalidaRepository(db)
	deudaRepo := repository.NewDeudaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	catalogoSvc := service.NewCatalogoService(catalogoRepo)
	inventarioSvc := service.NewInventarioService(inventarioRepo, secuenciaRepo)
	ventaSvc := service.NewVentaService(ventaRepo, catalogoRepo, inventarioSvc, locker)
	compraSvc := service.NewCompraService(compraRepo, catalogoRepo, inventarioSvc, locker)
	contratoSvc := service.NewContratoService(contratoRepo, catalogoRepo, secuenciaRepo, inventarioSvc, locker)
	depositoSvc := service.NewDepositoService(depositoRepo, catalogoRepo, secuenciaRepo, inventarioSvc, locker)
	salidaSvc := service.NewSalidaService(salidaRepo, catalogoRepo, secuenciaRepo)
	deudaSvc := service.NewDeudaService(deudaRepo, catalogoRepo, secuenciaRepo, locker)

	// ── Handlers ─────────────────────────────────────────────────────────────
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	contratosH := handler.NewContratosHandler(contratoSvc)
	depositosH := handler.NewDepositosHandler(depositoSvc)
	salidasH := handler.NewSalidasHandler(salidaSvc)
	prestamosH := handler.NewDeudasHandler(deudaSvc, model.CarteraPrestamos)
	anticiposH := handler.NewDeudasHandler(deudaSvc, model.CarteraAnticipos)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		v1.POST("/clientes", catalogoH.CrearCliente)
		v1.GET("/clientes", catalogoH.ListarClientes)
		v1.POST("/compradores", catalogoH.CrearComprador)
		v1.GET("/compradores", catalogoH.ListarCompradores)
		v1.POST("/productos", catalogoH.CrearProducto)
		v1.GET("/productos", catalogoH.ListarProductos)

		inv := v1.Group("/inventario")
		{
			inv.GET("/saldo", inventarioH.Saldo)
			inv.GET("/lotes", inventarioH.ListarLotes)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.RegistrarVenta)
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.DELETE("/:id", ventasH.AnularVenta)
		}

		compras := v1.Group("/compras")
		{
			compras.POST("", comprasH.RegistrarCompra)
			compras.GET("", comprasH.ListarCompras)
			compras.GET("/:id", comprasH.ObtenerCompra)
			compras.PATCH("/:id", comprasH.ActualizarCompra)
			compras.DELETE("/:id", comprasH.AnularCompra)
		}

		contratos := v1.Group("/contratos")
		{
			contratos.POST("", contratosH.CrearContrato)
			contratos.GET("", contratosH.ListarContratos)
			contratos.GET("/:id", contratosH.ObtenerContrato)
			contratos.DELETE("/:id", contratosH.AnularContrato)
			contratos.POST("/:id/entregas", contratosH.RegistrarEntrega)
		}
		v1.PUT("/entregas/:id", contratosH.ActualizarEntrega)
		v1.DELETE("/entregas/:id", contratosH.AnularEntrega)

		depositos := v1.Group("/depositos")
		{
			depositos.POST("", depositosH.RegistrarDeposito)
			depositos.GET("/saldo", depositosH.Saldo)
			depositos.DELETE("/:id", depositosH.AnularDeposito)
			depositos.POST("/liquidaciones", depositosH.Liquidar)
			depositos.DELETE("/liquidaciones/:grupo_id", depositosH.AnularLiquidacion)
		}

		salidas := v1.Group("/salidas")
		{
			salidas.POST("", salidasH.RegistrarSalida)
			salidas.GET("/saldo", salidasH.Saldo)
			salidas.POST("/liquidaciones", salidasH.Liquidar)
			salidas.DELETE("/liquidaciones/:grupo_id", salidasH.AnularLiquidacion)
		}

		for _, g := range []struct {
			path string
			h    *handler.DeudasHandler
		}{
			{"/prestamos", prestamosH},
			{"/anticipos", anticiposH},
		} {
			grp := v1.Group(g.path)
			grp.POST("/movimientos", g.h.RegistrarMovimiento)
			grp.DELETE("/movimientos/:pago_id", g.h.AnularMovimiento)
			grp.GET("/clientes/:cliente_id", g.h.EstadoCuenta)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.Production() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
