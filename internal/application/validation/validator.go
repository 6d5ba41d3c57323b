// Package validation valida DTOs de entrada con go-playground/validator y traduce los
// errores a *domain.ValidationError (campo → mensaje) usando el nombre JSON del campo.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fillplan-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// decimal.Decimal se valida como número (gt, gte, lte...).
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Struct valida v; devuelve nil o *domain.ValidationError.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.NewValidationError("body", err.Error())
	}
	details := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		details[fieldPath(e)] = message(e)
	}
	return &domain.ValidationError{Fields: details}
}

// fieldPath ruta JSON sin el nombre del struct raíz, ej. "emergency[0].sku_id".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es requerido"
	case "gt":
		return "debe ser mayor que " + e.Param()
	case "gte", "min":
		return "debe ser al menos " + e.Param()
	case "lte", "max":
		return "debe ser como máximo " + e.Param()
	case "uuid":
		return "debe ser un UUID válido"
	case "oneof":
		return "debe ser uno de: " + e.Param()
	default:
		return "valor inválido"
	}
}
