package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TallasDistribucion es la matriz color × talle de unidades cortadas:
// nombre de color → (id de talle → unidades).
type TallasDistribucion map[string]map[string]int

// TotalFila suma las unidades de todos los talles de un color.
func (m TallasDistribucion) TotalFila(color string) int {
	total := 0
	for _, n := range m[color] {
		total += n
	}
	return total
}

// Total suma todas las celdas de la matriz.
func (m TallasDistribucion) Total() int {
	total := 0
	for color := range m {
		total += m.TotalFila(color)
	}
	return total
}

// Vacia: sin ninguna celda con unidades.
func (m TallasDistribucion) Vacia() bool { return m.Total() == 0 }

// LoteProducto es la participación de un producto dentro de un lote.
// La matriz de distribución se edita en cualquier momento, antes o después de
// finalizar; una vez conciliado el stock las ediciones posteriores no
// reajustan lo ya acreditado.
//
// CantidadProducto cachea el total de la matriz, o el total ingresado a mano
// cuando la matriz está vacía.
type LoteProducto struct {
	ID                 uuid.UUID                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LoteID             uuid.UUID                              `gorm:"type:uuid;not null;index"`
	ProductoID         uuid.UUID                              `gorm:"type:uuid;not null;index"`
	Orden              int                                    `gorm:"not null"`
	TallasDistribucion datatypes.JSONType[TallasDistribucion] `gorm:"type:jsonb"`
	CantidadProducto   int                                    `gorm:"not null;default:0"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (LoteProducto) TableName() string { return "lotes_productos" }

// Matriz devuelve la distribución embebida (nil-safe).
func (lp *LoteProducto) Matriz() TallasDistribucion {
	m := lp.TallasDistribucion.Data()
	if m == nil {
		return TallasDistribucion{}
	}
	return m
}
