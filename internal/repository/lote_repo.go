package repository

import (
	"context"
	"time"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoteRepository es el contrato de acceso a lotes y sus productos hijos.
type LoteRepository interface {
	CreateTx(tx *gorm.DB, lote *model.LoteProduccion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LoteProduccion, error)
	List(ctx context.Context, filter dto.LoteFilter) ([]model.LoteProduccion, int64, error)

	// UpdateEtapa aplica la transición con chequeo optimista: la fila solo se
	// toca si version coincide. Devuelve las filas afectadas (0 = conflicto).
	UpdateEtapaTx(tx *gorm.DB, id uuid.UUID, version, etapa int, estado string, progreso int) (int64, error)
	// FinalizarTx además fija fecha_fin — misma guarda optimista.
	FinalizarTx(tx *gorm.DB, id uuid.UUID, version, etapa int, estado string, fin time.Time) (int64, error)

	UpdateDetalleRollos(ctx context.Context, id uuid.UUID, detalle []model.DetalleRollo) error

	FindLoteProductoByID(ctx context.Context, id uuid.UUID) (*model.LoteProducto, error)
	UpdateDistribucionTx(tx *gorm.DB, id uuid.UUID, matriz model.TallasDistribucion, cantidad int) error

	// NextCodigoTx reserva el siguiente número de la secuencia de códigos de
	// lote dentro de la tx.
	NextCodigoTx(tx *gorm.DB) (int64, error)

	DB() *gorm.DB
}

type loteRepo struct{ db *gorm.DB }

func NewLoteRepository(db *gorm.DB) LoteRepository { return &loteRepo{db: db} }

func (r *loteRepo) CreateTx(tx *gorm.DB, lote *model.LoteProduccion) error {
	// Crea lote + lotes_productos en el mismo INSERT en cascada.
	return tx.Create(lote).Error
}

func (r *loteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LoteProduccion, error) {
	var lote model.LoteProduccion
	err := r.db.WithContext(ctx).
		Preload("Productos", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Preload("Productos.Producto").
		Preload("Productos.Producto.Talles").
		Preload("Productos.Producto.Colores").
		First(&lote, "id = ?", id).Error
	return &lote, err
}

func (r *loteRepo) List(ctx context.Context, filter dto.LoteFilter) ([]model.LoteProduccion, int64, error) {
	var lotes []model.LoteProduccion
	var total int64

	q := r.db.WithContext(ctx).Model(&model.LoteProduccion{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Productos", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Preload("Productos.Producto").
		Order("fecha_inicio DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&lotes).Error
	return lotes, total, err
}

func (r *loteRepo) UpdateEtapaTx(tx *gorm.DB, id uuid.UUID, version, etapa int, estado string, progreso int) (int64, error) {
	res := tx.Model(&model.LoteProduccion{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"etapa_actual": etapa,
			"estado":       estado,
			"progreso":     progreso,
			"version":      gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *loteRepo) FinalizarTx(tx *gorm.DB, id uuid.UUID, version, etapa int, estado string, fin time.Time) (int64, error) {
	res := tx.Model(&model.LoteProduccion{}).
		Where("id = ? AND version = ? AND fecha_fin IS NULL", id, version).
		Updates(map[string]interface{}{
			"etapa_actual": etapa,
			"estado":       estado,
			"progreso":     100,
			"fecha_fin":    fin,
			"version":      gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *loteRepo) UpdateDetalleRollos(ctx context.Context, id uuid.UUID, detalle []model.DetalleRollo) error {
	return r.db.WithContext(ctx).Model(&model.LoteProduccion{}).
		Where("id = ?", id).
		Update("detalle_rollos", datatypes.NewJSONType(detalle)).Error
}

func (r *loteRepo) FindLoteProductoByID(ctx context.Context, id uuid.UUID) (*model.LoteProducto, error) {
	var lp model.LoteProducto
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Preload("Producto.Talles").
		Preload("Producto.Colores").
		First(&lp, "id = ?", id).Error
	return &lp, err
}

func (r *loteRepo) UpdateDistribucionTx(tx *gorm.DB, id uuid.UUID, matriz model.TallasDistribucion, cantidad int) error {
	return tx.Model(&model.LoteProducto{}).Where("id = ?", id).Updates(map[string]interface{}{
		"tallas_distribucion": datatypes.NewJSONType(matriz),
		"cantidad_producto":   cantidad,
	}).Error
}

func (r *loteRepo) NextCodigoTx(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Raw("SELECT nextval('lotes_codigo_seq')").Scan(&n).Error
	return n, err
}

func (r *loteRepo) DB() *gorm.DB { return r.db }
