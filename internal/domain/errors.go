package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrDuplicate        = errors.New("registro duplicado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrUnknownSKU       = errors.New("SKU desconocido para el producto")
	ErrInsufficientBulk = errors.New("las cantidades urgentes exceden el granel disponible")
)

// ValidationError detalla los campos inválidos de una entrada. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError construye el error con un único campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "entrada inválida: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// UnknownSKUError indica un SKU que no pertenece al producto (o no está activo).
type UnknownSKUError struct {
	SKUID     string
	ProductID string
}

func (e *UnknownSKUError) Error() string {
	return fmt.Sprintf("SKU %s no pertenece al producto %s", e.SKUID, e.ProductID)
}

func (e *UnknownSKUError) Unwrap() error { return ErrUnknownSKU }

// ShortfallLine cantidad de granel requerida por una línea urgente.
type ShortfallLine struct {
	SKUID    string
	QtyPacks int64
	Needed   decimal.Decimal
}

// InsufficientBulkError las deducciones urgentes suman más que el granel. No se aplicó ninguna deducción.
type InsufficientBulkError struct {
	Needed    decimal.Decimal
	Available decimal.Decimal
	Lines     []ShortfallLine
}

// Shortfall devuelve cuánto granel falta (Needed - Available).
func (e *InsufficientBulkError) Shortfall() decimal.Decimal {
	return e.Needed.Sub(e.Available)
}

func (e *InsufficientBulkError) Error() string {
	return fmt.Sprintf("urgentes requieren %s y solo hay %s (faltan %s)",
		e.Needed.String(), e.Available.String(), e.Shortfall().String())
}

func (e *InsufficientBulkError) Unwrap() error { return ErrInsufficientBulk }
