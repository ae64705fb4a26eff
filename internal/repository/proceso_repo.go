package repository

import (
	"context"

	"fabricaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcesoRepository defines the data access contract for process templates.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProcesoRepository interface {
	Create(ctx context.Context, p *model.ProcesoProductivo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProcesoProductivo, error)
	List(ctx context.Context) ([]model.ProcesoProductivo, error)

	// ReplaceEtapasTx borra e inserta las etapas dentro de una tx —
	// full replace, last-writer-wins.
	ReplaceEtapasTx(tx *gorm.DB, procesoID uuid.UUID, etapas []model.EtapaProceso) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type procesoRepo struct{ db *gorm.DB }

func NewProcesoRepository(db *gorm.DB) ProcesoRepository { return &procesoRepo{db: db} }

func (r *procesoRepo) Create(ctx context.Context, p *model.ProcesoProductivo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *procesoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProcesoProductivo, error) {
	var p model.ProcesoProductivo
	err := r.db.WithContext(ctx).
		Preload("Etapas", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *procesoRepo) List(ctx context.Context) ([]model.ProcesoProductivo, error) {
	var procesos []model.ProcesoProductivo
	err := r.db.WithContext(ctx).
		Preload("Etapas", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Order("nombre ASC").
		Find(&procesos).Error
	return procesos, err
}

func (r *procesoRepo) ReplaceEtapasTx(tx *gorm.DB, procesoID uuid.UUID, etapas []model.EtapaProceso) error {
	if err := tx.Where("proceso_id = ?", procesoID).Delete(&model.EtapaProceso{}).Error; err != nil {
		return err
	}
	for i := range etapas {
		etapas[i].ProcesoID = procesoID
	}
	return tx.Create(&etapas).Error
}

func (r *procesoRepo) DB() *gorm.DB { return r.db }
