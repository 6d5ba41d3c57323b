package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
	"github.com/jhoicas/fillplan-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	FillPlanUC *fillplan.UseCase
	JWTSecret  string
	Metrics    nethttp.Handler // opcional: exposición Prometheus en /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (Bearer Token con rol conocido)
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(fillplan.RoleAdmin, fillplan.RolePlanner, fillplan.RoleViewer),
	)

	productHandler := NewProductHandler(deps.ProductUC, deps.FillPlanUC)
	fillPlanHandler := NewFillPlanHandler(deps.FillPlanUC)

	// Products
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/resolve", productHandler.Resolve)
	products.Get("/:id/skus", productHandler.ListSKUs)
	products.Get("/:id/metrics", productHandler.Metrics)
	products.Get("/:id/fill-plans", fillPlanHandler.ListByProduct)

	// Fill plans (guardar exige planner o admin; lo decide el caso de uso)
	plans := protected.Group("/fill-plans")
	plans.Post("/", fillPlanHandler.Calculate)
	plans.Get("/:id", fillPlanHandler.GetRun)
}
