package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DetalleRollo es una entrada del plan de consumo de un lote. Referencia un
// rollo y registra lo descontado contra él al crear el lote. Editable después
// como corrección contable: los ajustes posteriores NO vuelven a tocar los
// remanentes del rollo.
type DetalleRollo struct {
	RolloID          uuid.UUID       `json:"rollo_id"`
	Color            string          `json:"color"`
	KgConsumido      decimal.Decimal `json:"kg_consumido"`
	MetrosConsumidos decimal.Decimal `json:"metros_consumidos"`
}

// LoteProduccion es un lote de producción sobre 1..3 productos.
//
// ProcesoSnapshot y DetalleRollos se embeben como JSONB dentro de la fila
// (no como tablas hijas): la historia del lote queda inmutable aunque el
// proceso original se edite después.
//
// EtapaActual es la única fuente de verdad de la posición; Estado espeja el
// nombre de la etapa para listados. Version respalda el chequeo optimista en
// cada transición de etapa.
type LoteProduccion struct {
	ID              uuid.UUID                             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo          string                                `gorm:"uniqueIndex;not null"`
	ProcesoSnapshot datatypes.JSONType[[]EtapaSnapshot]   `gorm:"type:jsonb;not null"`
	DetalleRollos   datatypes.JSONType[[]DetalleRollo]    `gorm:"type:jsonb;not null"`
	EtapaActual     int                                   `gorm:"not null;default:0"`
	Estado          string                                `gorm:"index;not null"`
	Progreso        int                                   `gorm:"not null;default:0"`
	Version         int                                   `gorm:"not null;default:0"`
	Encargado       *string
	FechaInicio     time.Time `gorm:"not null"`
	FechaFin        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Productos []LoteProducto `gorm:"foreignKey:LoteID;constraint:OnDelete:CASCADE"`
}

func (LoteProduccion) TableName() string { return "lotes_produccion" }

// Etapas devuelve el snapshot congelado.
func (l *LoteProduccion) Etapas() []EtapaSnapshot { return l.ProcesoSnapshot.Data() }

// Finalizado: una vez registrada fecha_fin el lote es terminal — solo quedan
// válidas las ediciones de consumo/distribución y la lectura.
func (l *LoteProduccion) Finalizado() bool { return l.FechaFin != nil }

// CalcularProgreso mapea un índice de etapa a porcentaje redondeado.
// Con una sola etapa el progreso es siempre 0.
func CalcularProgreso(indice, totalEtapas int) int {
	if totalEtapas <= 1 {
		return 0
	}
	return int(float64(indice)/float64(totalEtapas-1)*100 + 0.5)
}
