// @title           Bodega API
// @version         1.0
// @description     Movimientos entre bodegas, documentos de aprobación, consultas de stock y reportes.
// @BasePath        /api/v1
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @securityDefinitions.basic   BasicAuth
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	_ "github.com/jhoicas/Bodega-api/docs"
	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/application/document"
	"github.com/jhoicas/Bodega-api/internal/application/movement"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/report"
	"github.com/jhoicas/Bodega-api/internal/application/stock"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Bodega-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/rabbitmq"
	infraredis "github.com/jhoicas/Bodega-api/internal/infrastructure/redis"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/Bodega-api/internal/interfaces/http"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/jwt"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// storage repositorios del backend elegido.
type storage struct {
	movements repository.MovementRepository
	documents repository.DocumentRepository
	stock     repository.StockRepository
	users     repository.UserRepository
	tx        repository.TxRunner
	closers   []func()
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
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("aplicación finalizada con error")
	}
}

// run arma las dependencias y sirve hasta recibir SIGINT/SIGTERM. Los recursos abiertos se
// cierran al volver, también cuando falla la inicialización.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("inicializar almacenamiento: %w", err)
	}
	defer func() {
		for _, c := range st.closers {
			c()
		}
	}()

	// Caché de stock (opcional)
	var stockCache ports.StockCache = ports.NopStockCache{}
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer client.Close()
		stockCache = infraredis.NewStockCache(client, cfg.Redis.TTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de stock habilitado")
	}

	// Eventos de ciclo de vida (opcional)
	var events ports.EventPublisher = ports.NopPublisher{}
	if cfg.AMQP.Enabled() {
		pub, err := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("conexión a RabbitMQ: %w", err)
		}
		defer closeQuietly(pub)
		events = pub
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publicación de eventos habilitada")
	}

	admin, err := auth.NewAdminCredential(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("credencial de administración: %w", err)
	}
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todos los tokens Bearer serán rechazados")
	}
	resolver := auth.NewResolver(jwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer), admin)

	movementEngine := movement.NewEngine(st.movements, st.tx,
		movement.WithEvents(events),
		movement.WithStockCache(stockCache),
		movement.WithLogger(log.Component("movements")),
	)
	documentEngine := document.NewEngine(st.documents, st.tx,
		document.WithEvents(events),
		document.WithRenderer(infrapdf.NewMarotoPDFGenerator(cfg.App.Name)),
		document.WithLogger(log.Component("documents")),
	)
	ledger := stock.NewLedger(st.stock, stockCache, log.Component("stock"))
	reports := report.NewService(st.movements, st.documents)
	userUC := usecase.NewUserUseCase(st.users)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:         cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, log.Component("http"))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Bodega API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements:      movementEngine,
		Documents:      documentEngine,
		Stock:          ledger,
		Reports:        reports,
		Users:          userUC,
		Resolver:       resolver,
		BasePath:       cfg.App.BasePath,
		ServiceName:    cfg.App.Name,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Log:            log,
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
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StoragePostgres {
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			movements: postgres.NewMovementRepository(pool),
			documents: postgres.NewDocumentRepository(pool),
			stock:     postgres.NewStockRepository(pool),
			users:     postgres.NewUserRepository(pool),
			tx:        postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
			closers:   []func(){pool.Close},
		}, nil
	}

	store := memory.NewStore()
	if cfg.Storage.SeedPath != "" {
		if _, err := os.Stat(cfg.Storage.SeedPath); err == nil {
			data, err := seed.Load(cfg.Storage.SeedPath)
			if err != nil {
				return nil, err
			}
			now := time.Now().UTC()
			store.SeedStock(data.Balances(now))
			store.SeedUsers(data.DirectoryUsers(now))
			log.Info().
				Str("path", cfg.Storage.SeedPath).
				Int("balances", len(data.Stock)).
				Int("users", len(data.Users)).
				Msg("semilla cargada")
		} else {
			log.Warn().Str("path", cfg.Storage.SeedPath).Msg("archivo de semilla no encontrado, arrancando vacío")
		}
	}
	return &storage{
		movements: store.Movements(),
		documents: store.Documents(),
		stock:     store.Stock(),
		users:     store.Users(),
		tx:        store,
	}, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
