package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Umbrales bajo los cuales un rollo se considera sin material útil.
// El peso manda cuando ambos se registran; los metros son informativos en
// rollos que solo se pesan.
var (
	PesoEpsilon   = decimal.NewFromFloat(0.01) // kg
	MetrosEpsilon = decimal.NewFromFloat(0.5)  // m
)

// Estados derivados de un rollo. Nunca se persisten — se calculan de los
// remanentes en cada lectura.
const (
	RolloDisponible = "disponible"
	RolloParcial    = "parcialmente_usado"
	RolloAgotado    = "agotado"
)

// RolloTela es una unidad física de tela con doble unidad de medida.
// Invariante: 0 ≤ restante ≤ inicial para metros y peso, siempre.
type RolloTela struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo          string          `gorm:"uniqueIndex;not null"`
	TipoTela        string          `gorm:"index;not null"`
	Color           string          `gorm:"not null"`
	MetrosIniciales decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MetrosRestantes decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PesoInicial     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PesoRestante    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Encargado       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (RolloTela) TableName() string { return "rollos_tela" }

// Agotado aplica la regla de prioridad por peso: un rollo está agotado cuando
// el peso restante cae bajo el epsilon Y los metros restantes bajo el suyo.
func (r *RolloTela) Agotado() bool {
	return r.PesoRestante.LessThanOrEqual(PesoEpsilon) &&
		r.MetrosRestantes.LessThanOrEqual(MetrosEpsilon)
}

// Seleccionable indica si el rollo puede asignarse a un lote nuevo.
// Regla OR inclusiva: algunos rollos se registran solo por peso.
func (r *RolloTela) Seleccionable() bool {
	return r.MetrosRestantes.GreaterThan(MetrosEpsilon) ||
		r.PesoRestante.GreaterThan(PesoEpsilon)
}

// Estado deriva el estado para mostrar en listados.
func (r *RolloTela) Estado() string {
	switch {
	case r.Agotado():
		return RolloAgotado
	case r.MetrosRestantes.Equal(r.MetrosIniciales) && r.PesoRestante.Equal(r.PesoInicial):
		return RolloDisponible
	default:
		return RolloParcial
	}
}
