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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
	"github.com/jhoicas/fillplan-api/internal/application/usecase"
	"github.com/jhoicas/fillplan-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/fillplan-api/internal/interfaces/http"
	"github.com/jhoicas/fillplan-api/migrations"
	"github.com/jhoicas/fillplan-api/pkg/config"
	"github.com/jhoicas/fillplan-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Dur("run_timeout", cfg.Planner.RunTimeout).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool, migrations.FS)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Strs("files", applied).Msg("migraciones aplicadas")
	}

	productRepo := postgres.NewProductRepository(pool)
	skuRepo := postgres.NewSKURepository(pool)
	factRepo := postgres.NewFactRepository(pool)
	runRepo := postgres.NewFillPlanRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	productUC := usecase.NewProductUseCase(productRepo, skuRepo)
	fillPlanUC := fillplan.NewUseCase(fillplan.Deps{
		Products: productRepo,
		SKUs:     skuRepo,
		Facts:    factRepo,
		Runs:     runRepo,
		Tx:       txRunner,
		Log:      log,
		Metrics:  fillplan.NewMetrics(registry),
	}, fillplan.Config{
		RunTimeout:     cfg.Planner.RunTimeout,
		PersistDefault: cfg.Planner.PersistDefault,
		MaxEmergency:   cfg.Planner.MaxEmergency,
		MaxPacks:       cfg.Planner.MaxPacks,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Fill Plan API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		FillPlanUC: fillPlanUC,
		JWTSecret:  cfg.JWT.Secret,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
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
