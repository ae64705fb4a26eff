package repository

import (
	"context"

	"fabricaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditoriaRepository persiste el log append-only de transiciones de etapa.
type AuditoriaRepository interface {
	Create(ctx context.Context, a *model.AuditoriaEtapa) error
	ListByLote(ctx context.Context, loteID uuid.UUID) ([]model.AuditoriaEtapa, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, a *model.AuditoriaEtapa) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditoriaRepo) ListByLote(ctx context.Context, loteID uuid.UUID) ([]model.AuditoriaEtapa, error) {
	var entradas []model.AuditoriaEtapa
	err := r.db.WithContext(ctx).
		Where("lote_id = ?", loteID).
		Order("created_at ASC").
		Find(&entradas).Error
	return entradas, err
}
