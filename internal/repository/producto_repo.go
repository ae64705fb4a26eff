package repository

import (
	"context"

	"fabricaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository es el contrato mínimo hacia el catálogo (colaborador
// externo): lectura de productos/talles y escritura de deltas de stock y
// altas de color. Los incrementos son aditivos a nivel SQL — el catálogo y
// la tienda escriben los mismos contadores en paralelo.
type ProductoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)

	// IncrementarStockTx: stock plano del producto (fallback sin talles).
	IncrementarStockTx(tx *gorm.DB, productoID uuid.UUID, delta int) error
	// IncrementarStockTalleTx: stock a nivel talle.
	IncrementarStockTalleTx(tx *gorm.DB, talleID uuid.UUID, delta int) error

	// AgregarColorTx registra un color nuevo observado en una matriz de corte.
	// Idempotente por (producto, nombre).
	AgregarColorTx(tx *gorm.DB, color *model.ColorProducto) error

	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Talles").
		Preload("Colores").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) IncrementarStockTx(tx *gorm.DB, productoID uuid.UUID, delta int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", productoID).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta)).Error
}

func (r *productoRepo) IncrementarStockTalleTx(tx *gorm.DB, talleID uuid.UUID, delta int) error {
	return tx.Model(&model.ProductoTalle{}).Where("id = ?", talleID).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productoRepo) AgregarColorTx(tx *gorm.DB, color *model.ColorProducto) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "producto_id"}, {Name: "nombre"}},
		DoNothing: true,
	}).Create(color).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
