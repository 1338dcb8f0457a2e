// @title        FoodStock API
// @version      1.0
// @description  Inventario por lotes con consumo FIFO por caducidad para negocios de alimentos.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token JWT>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/foodstock-api/docs"
	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/local"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/foodstock-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/foodstock-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/foodstock-api/internal/interfaces/http"
	"github.com/jhoicas/foodstock-api/pkg/config"
	"github.com/jhoicas/foodstock-api/pkg/format"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// storage repositorios y TxRunner del backend elegido con STORAGE.
type storage struct {
	txRunner  inventory.TxRunner
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	batches   repository.StockBatchRepository
	movements repository.StockMovementRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.Storage).
		Str("aggregate_mode", cfg.Inventory.AggregateMode).
		Bool("strict_stock", cfg.Inventory.StrictStock).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Bloqueo por producto e idempotencia: Redis si está configurado, en proceso si no
	var (
		locker      inventory.ProductLocker
		idempotency inventory.IdempotencyStore
	)
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, infraredis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		locker = infraredis.NewProductLocker(client, cfg.Lock.TTL, cfg.Lock.RetryCount, cfg.Lock.RetryEvery)
		idempotency = infraredis.NewIdempotencyStore(client, cfg.Inventory.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo distribuido con Redis")
	} else {
		locker = local.NewProductLocker(cfg.Lock.Wait())
		idempotency = local.NewIdempotencyStore(cfg.Inventory.IdempotencyTTL)
		log.Warn().Msg("REDIS_ADDR vacío: bloqueo e idempotencia en proceso (una sola instancia)")
	}

	ucLog := log.Named("inventory")
	aggregate := inventory.NewAggregateUpdater(inventory.ParseAggregateMode(cfg.Inventory.AggregateMode))
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		store.txRunner, store.products, store.suppliers, locker,
		aggregate, cfg.Inventory.StrictStock, ucLog,
	).WithIdempotency(idempotency)
	movementQueryUC := inventory.NewMovementQueryUseCase(store.movements)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.products)
	batchUC := inventory.NewBatchUseCase(store.batches, store.products, store.suppliers, ucLog)
	reconcileUC := inventory.NewReconcileUseCase(store.txRunner, store.products, store.batches, locker, ucLog)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       docs.SwaggerInfo.Title,
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:          cfg.App.Name,
		RegisterMovement: registerMovementUC,
		MovementQueries:  movementQueryUC,
		Replenishment:    replenishmentUC,
		Batches:          batchUC,
		Reconcile:        reconcileUC,
		Formatter:        format.New(cfg.App.DisplayLocale),
		Logger:           log.Named("http"),
		JWTSecret:        cfg.JWT.Secret,
		JWTIssuer:        cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage conecta PostgreSQL (aplicando migraciones si DB_AUTO_MIGRATE) o arma el store en memoria con datos demo.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		s := memory.NewStore()
		memory.SeedDemo(s, memory.DemoCompanyID)
		log.Warn().
			Str("company_id", memory.DemoCompanyID).
			Str("product_id", memory.DemoMilkID).
			Msg("STORAGE=memory: datos demo, nada se persiste")
		return &storage{
			txRunner:  memory.NewTxRunner(s),
			products:  s.Products(),
			suppliers: s.Suppliers(),
			batches:   s.Batches(),
			movements: s.Movements(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Named("migrate")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		batches:   postgres.NewStockBatchRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		close:     pool.Close,
	}, nil
}
