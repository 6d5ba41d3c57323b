package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
	"github.com/jhoicas/fillplan-api/internal/domain"
)

// localErr guarda el error original para el access log.
const localErr = "handler_error"

// respondError traduce errores de dominio a códigos HTTP.
func respondError(c *fiber.Ctx, err error) error {
	var (
		ve  *domain.ValidationError
		ibe *domain.InsufficientBulkError
		use *domain.UnknownSKUError
	)
	switch {
	case errors.As(err, &ibe):
		return c.Status(fiber.StatusConflict).JSON(toInsufficientBulkResponse(ibe))
	case errors.As(err, &use):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "UNKNOWN_SKU",
			Message: use.Error(),
			Fields:  map[string]string{"sku_id": use.SKUID},
		})
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida", Fields: ve.Fields})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "el token no identifica al usuario"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol no permite guardar corridas"})
	case errors.Is(err, context.DeadlineExceeded):
		c.Locals(localErr, err)
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "la corrida excedió el tiempo máximo"})
	default:
		c.Locals(localErr, err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func toInsufficientBulkResponse(e *domain.InsufficientBulkError) dto.InsufficientBulkResponse {
	out := dto.InsufficientBulkResponse{
		Code:      "INSUFFICIENT_BULK",
		Message:   fillplan.MsgInsufficientBulk,
		Needed:    e.Needed,
		Available: e.Available,
		Shortfall: e.Shortfall(),
		Lines:     make([]dto.ShortfallLineResponse, 0, len(e.Lines)),
	}
	for _, l := range e.Lines {
		out.Lines = append(out.Lines, dto.ShortfallLineResponse{SKUID: l.SKUID, QtyPacks: l.QtyPacks, Needed: l.Needed})
	}
	return out
}
