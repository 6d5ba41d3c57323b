package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
)

// FillPlanHandler cálculo y consulta de planes de llenado (protegido).
type FillPlanHandler struct {
	uc *fillplan.UseCase
}

// NewFillPlanHandler construye el handler.
func NewFillPlanHandler(uc *fillplan.UseCase) *FillPlanHandler {
	return &FillPlanHandler{uc: uc}
}

// Calculate godoc
// @Summary      Calcular plan de llenado para un granel
// @Description  Descuenta los urgentes, reparte el granel en empaques enteros igualando el MOS entre regiones y, con save, guarda la corrida (rol planner o admin).
// @Tags         fill-plans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.FillPlanRequest  true  "Producto, granel y urgentes"
// @Success      200   {object}  dto.FillPlanResponse
// @Success      201   {object}  dto.FillPlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientBulkResponse
// @Router       /api/fill-plans [post]
func (h *FillPlanHandler) Calculate(c *fiber.Ctx) error {
	var in dto.FillPlanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actor := fillplan.Actor{UserID: GetUserID(c), Role: GetRole(c)}
	out, err := h.uc.Calculate(c.UserContext(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	if out.Saved {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}

// GetRun godoc
// @Summary      Obtener corrida guardada
// @Tags         fill-plans
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la corrida"
// @Success      200  {object}  dto.FillPlanResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fill-plans/{id} [get]
func (h *FillPlanHandler) GetRun(c *fiber.Ctx) error {
	out, err := h.uc.GetRun(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Corridas guardadas de un producto
// @Tags         fill-plans
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.FillPlanRunListResponse
// @Router       /api/products/{id}/fill-plans [get]
func (h *FillPlanHandler) ListByProduct(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.ListRuns(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
