package repository

import (
	"context"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RolloRepository es el contrato de acceso a rollos de tela.
// El par FindForUpdateTx / UpdateRestantesTx implementa el read-modify-write
// atómico por rollo: el SELECT toma un row lock (FOR UPDATE) y el write ocurre
// en la misma tx, nunca como dos llamadas separadas.
type RolloRepository interface {
	Create(ctx context.Context, r *model.RolloTela) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RolloTela, error)
	List(ctx context.Context, filter dto.RolloFilter) ([]model.RolloTela, error)
	ListDisponibles(ctx context.Context, filter dto.DisponiblesFilter) ([]model.RolloTela, error)

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.RolloTela, error)
	UpdateRestantesTx(tx *gorm.DB, id uuid.UUID, peso, metros decimal.Decimal) error

	DB() *gorm.DB
}

type rolloRepo struct{ db *gorm.DB }

func NewRolloRepository(db *gorm.DB) RolloRepository { return &rolloRepo{db: db} }

func (r *rolloRepo) Create(ctx context.Context, rollo *model.RolloTela) error {
	return r.db.WithContext(ctx).Create(rollo).Error
}

func (r *rolloRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RolloTela, error) {
	var rollo model.RolloTela
	err := r.db.WithContext(ctx).First(&rollo, "id = ?", id).Error
	return &rollo, err
}

func (r *rolloRepo) List(ctx context.Context, filter dto.RolloFilter) ([]model.RolloTela, error) {
	var rollos []model.RolloTela
	q := r.db.WithContext(ctx).Model(&model.RolloTela{})
	if filter.TipoTela != "" {
		q = q.Where("tipo_tela = ?", filter.TipoTela)
	}
	if err := q.Order("codigo ASC").Find(&rollos).Error; err != nil {
		return nil, err
	}
	// Estado es derivado, no persistido — se filtra en memoria.
	if filter.Estado == "" {
		return rollos, nil
	}
	filtrados := make([]model.RolloTela, 0, len(rollos))
	for _, rollo := range rollos {
		if rollo.Estado() == filter.Estado {
			filtrados = append(filtrados, rollo)
		}
	}
	return filtrados, nil
}

// ListDisponibles aplica la regla OR inclusiva: restan metros útiles O resta
// peso útil (hay rollos que solo se registran por peso).
func (r *rolloRepo) ListDisponibles(ctx context.Context, filter dto.DisponiblesFilter) ([]model.RolloTela, error) {
	var rollos []model.RolloTela
	q := r.db.WithContext(ctx).
		Where("metros_restantes > ? OR peso_restante > ?", model.MetrosEpsilon, model.PesoEpsilon)
	if filter.TipoTela != "" {
		q = q.Where("tipo_tela = ?", filter.TipoTela)
	}
	if filter.MinMetros.IsPositive() {
		q = q.Where("metros_restantes >= ?", filter.MinMetros)
	}
	err := q.Order("codigo ASC").Find(&rollos).Error
	return rollos, err
}

func (r *rolloRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.RolloTela, error) {
	var rollo model.RolloTela
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rollo, "id = ?", id).Error
	return &rollo, err
}

func (r *rolloRepo) UpdateRestantesTx(tx *gorm.DB, id uuid.UUID, peso, metros decimal.Decimal) error {
	return tx.Model(&model.RolloTela{}).Where("id = ?", id).Updates(map[string]interface{}{
		"peso_restante":    peso,
		"metros_restantes": metros,
	}).Error
}

func (r *rolloRepo) DB() *gorm.DB { return r.db }
