package model

import (
	"time"

	"github.com/google/uuid"
)

// Producto es la superficie mínima del catálogo que este núcleo toca: lee el
// proceso declarado y los talles, y escribe deltas de stock y altas de color.
// El ABM completo del producto vive en el colaborador de catálogo.
type Producto struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string     `gorm:"index;not null"`
	ProcesoID   *uuid.UUID `gorm:"type:uuid;index"` // proceso productivo declarado (opcional)
	StockActual int        `gorm:"not null;default:0"`
	Activo      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Talles  []ProductoTalle `gorm:"foreignKey:ProductoID"`
	Colores []ColorProducto `gorm:"foreignKey:ProductoID"`
}

// ProductoTalle es un talle del producto con su contador de stock propio.
// Los incrementos sobre Stock son siempre aditivos a nivel SQL (stock + ?)
// porque el catálogo y la tienda escriben estos mismos contadores.
type ProductoTalle struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Codigo     string    `gorm:"not null"` // "S", "M", "38", …
	EnCurva    bool      `gorm:"not null;default:true"`
	Stock      int       `gorm:"not null;default:0"`
}

func (ProductoTalle) TableName() string { return "productos_talles" }

// ColorProducto es un color conocido del producto. La conciliación de stock
// registra automáticamente los colores nuevos que aparecen en una matriz de
// corte; Hex queda nil cuando ninguna palabra clave matchea el nombre.
type ColorProducto struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_producto_color"`
	Nombre     string    `gorm:"not null;uniqueIndex:idx_producto_color"`
	Hex        *string
	CreatedAt  time.Time
}

func (ColorProducto) TableName() string { return "colores_producto" }
