package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditoriaEtapa registra cada transición de etapa de un lote (quién, cuándo,
// de dónde, hacia dónde). Log append-only: las transiciones no monótonas son
// legítimas (rework, corrección de mis-click), así que la auditoría es el
// lugar donde reconstruir la historia, no una validación.
// Se escribe de forma asíncrona vía la cola de workers.
type AuditoriaEtapa struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LoteID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EtapaDe   string    `gorm:"not null"`
	EtapaA    string    `gorm:"not null"`
	IndiceDe  int       `gorm:"not null"`
	IndiceA   int       `gorm:"not null"`
	Encargado *string
	CreatedAt time.Time
}

func (AuditoriaEtapa) TableName() string { return "auditoria_etapas" }
