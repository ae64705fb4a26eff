package model

import (
	"time"

	"github.com/google/uuid"
)

// ProcesoProductivo es una secuencia ordenada de etapas de fabricación.
// Los lotes NO referencian el proceso por id durante su vida: al crearse
// toman una copia congelada de las etapas (ver LoteProduccion.ProcesoSnapshot),
// por lo que editar un proceso nunca afecta lotes en curso.
type ProcesoProductivo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Etapas []EtapaProceso `gorm:"foreignKey:ProcesoID;constraint:OnDelete:CASCADE"`
}

func (ProcesoProductivo) TableName() string { return "procesos_productivos" }

// EtapaProceso es un paso del proceso. Orden es contiguo 0..n-1 (se reasigna
// al guardar, nunca se confía en el orden recibido). RequiereInput marca las
// etapas que bloquean la transición hasta recibir cantidades reales producidas.
type EtapaProceso struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProcesoID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre        string    `gorm:"not null"`
	Orden         int       `gorm:"not null"`
	RequiereInput bool      `gorm:"not null;default:false"`
}

func (EtapaProceso) TableName() string { return "etapas_proceso" }

// EtapaSnapshot es la forma embebida de una etapa dentro del snapshot JSONB
// de un lote. Valor, no referencia: inmutable una vez escrito.
type EtapaSnapshot struct {
	Nombre        string `json:"nombre"`
	Orden         int    `json:"orden"`
	RequiereInput bool   `json:"requiere_input"`
}

// EtapasPorDefecto es el proceso aplicado cuando ningún producto del lote
// declara uno propio.
func EtapasPorDefecto() []EtapaSnapshot {
	return []EtapaSnapshot{
		{Nombre: "planificado", Orden: 0},
		{Nombre: "corte", Orden: 1},
		{Nombre: "taller", Orden: 2},
		{Nombre: "terminado", Orden: 3, RequiereInput: true},
	}
}
