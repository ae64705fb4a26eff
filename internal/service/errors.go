package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Taxonomía de errores del núcleo. Cada rechazo nombra el recurso que lo
// provocó (rollo, etapa, producto, lote): el operador necesita elegir otro
// sin adivinar. Ninguno es fatal — el alcance es siempre el request que falló
// y ningún estado parcial queda escrito.

// ValidacionError: forma de entrada inválida. Se rechaza antes de cualquier
// escritura.
type ValidacionError struct {
	Campo  string
	Motivo string
}

func (e *ValidacionError) Error() string {
	return fmt.Sprintf("validacion: %s: %s", e.Campo, e.Motivo)
}

// MaterialInsuficienteError: el consumo pedido dejaría el peso restante del
// rollo en negativo. Todo-o-nada dentro del mismo lote: ninguna otra entrada
// del plan se aplica.
type MaterialInsuficienteError struct {
	RolloID    uuid.UUID
	Codigo     string
	Restante   decimal.Decimal
	Solicitado decimal.Decimal
}

func (e *MaterialInsuficienteError) Error() string {
	return fmt.Sprintf("material insuficiente en rollo %s (%s): restan %s kg, se pidieron %s kg",
		e.Codigo, e.RolloID, e.Restante.StringFixed(2), e.Solicitado.StringFixed(2))
}

// EtapaDesconocidaError: la etapa destino no existe en el snapshot del lote.
// Nunca un no-op silencioso.
type EtapaDesconocidaError struct {
	LoteID uuid.UUID
	Etapa  string
}

func (e *EtapaDesconocidaError) Error() string {
	return fmt.Sprintf("etapa %q no existe en el proceso del lote %s", e.Etapa, e.LoteID)
}

// EtapaRequiereCantidadesError: la etapa destino tiene requiere_input — la
// transición se difiere hasta que Finalizar reciba las cantidades reales.
type EtapaRequiereCantidadesError struct {
	LoteID uuid.UUID
	Etapa  string
}

func (e *EtapaRequiereCantidadesError) Error() string {
	return fmt.Sprintf("la etapa %q del lote %s requiere cantidades producidas: usar finalizar", e.Etapa, e.LoteID)
}

// ModificacionConcurrenteError: falló el chequeo optimista de versión. El
// caller debe releer el lote y reintentar; nunca se pisa silenciosamente.
type ModificacionConcurrenteError struct {
	LoteID uuid.UUID
}

func (e *ModificacionConcurrenteError) Error() string {
	return fmt.Sprintf("el lote %s fue modificado por otra operacion: releer y reintentar", e.LoteID)
}

// LoteFinalizadoError: el lote ya es terminal. Guarda de idempotencia sobre
// Finalizar y sobre cualquier transición posterior.
type LoteFinalizadoError struct {
	LoteID uuid.UUID
}

func (e *LoteFinalizadoError) Error() string {
	return fmt.Sprintf("el lote %s ya fue finalizado", e.LoteID)
}
