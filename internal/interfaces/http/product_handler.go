package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
	"github.com/jhoicas/fillplan-api/internal/application/usecase"
)

// ProductHandler maneja las consultas de productos, SKUs y métricas (protegido).
type ProductHandler struct {
	uc       *usecase.ProductUseCase
	fillPlan *fillplan.UseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, fillPlan *fillplan.UseCase) *ProductHandler {
	return &ProductHandler{uc: uc, fillPlan: fillPlan}
}

// List godoc
// @Summary      Listar productos activos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Resolver producto por nombre (exacto, sin distinguir mayúsculas)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        name  query  string  true  "Nombre del producto"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/resolve [get]
func (h *ProductHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveProductRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Resolve(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListSKUs godoc
// @Summary      SKUs activos del producto, por tamaño de empaque
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.SKUListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/skus [get]
func (h *ProductHandler) ListSKUs(c *fiber.Ctx) error {
	out, err := h.uc.ListSKUs(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Metrics godoc
// @Summary      Stock, pronóstico y MOS por SKU y región
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductMetricsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/metrics [get]
func (h *ProductHandler) Metrics(c *fiber.Ctx) error {
	out, err := h.fillPlan.SKUMetrics(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
