package handler

import (
	"errors"
	"net/http"
	"reflect"

	"fabricaops/internal/apierror"
	"fabricaops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps the typed domain errors onto HTTP statuses.
// Every rejection names the resource that caused it so the operator can pick
// another roll/stage/product without guessing.
func respondServiceError(c *gin.Context, err error) {
	var (
		validacion  *service.ValidacionError
		material    *service.MaterialInsuficienteError
		desconocida *service.EtapaDesconocidaError
		requiere    *service.EtapaRequiereCantidadesError
		concurrente *service.ModificacionConcurrenteError
		finalizado  *service.LoteFinalizadoError
	)

	switch {
	case errors.As(err, &validacion):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{validacion.Campo: validacion.Motivo}))
	case errors.As(err, &material):
		c.JSON(http.StatusConflict, apierror.NewConRecurso(err.Error(), material.RolloID.String()))
	case errors.As(err, &desconocida):
		c.JSON(http.StatusBadRequest, apierror.NewConRecurso(err.Error(), desconocida.Etapa))
	case errors.As(err, &requiere):
		c.JSON(http.StatusConflict, apierror.NewConRecurso(err.Error(), requiere.Etapa))
	case errors.As(err, &concurrente):
		c.JSON(http.StatusConflict, apierror.NewConRecurso(err.Error(), concurrente.LoteID.String()))
	case errors.As(err, &finalizado):
		c.JSON(http.StatusConflict, apierror.NewConRecurso(err.Error(), finalizado.LoteID.String()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
	default:
		// Persistence/transport failures surface verbatim to the middleware
		// log; the client gets the generic envelope.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
