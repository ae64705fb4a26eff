package service

import (
	"context"
	"strings"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"
	"fabricaops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CorteService es el libro de distribución de corte: la matriz color × talle
// de cada producto del lote, y la conciliación de esa matriz contra el stock
// del catálogo al finalizar.
type CorteService interface {
	GuardarDistribucion(ctx context.Context, loteProductoID uuid.UUID, req dto.DistribucionRequest) (*dto.LoteProductoResponse, error)

	// ReconciliarStockTx acredita el corte al stock dentro de la tx de
	// finalización: una celda (color, talle, n>0) suma n al stock de ese
	// talle; con matriz vacía cae al incremento plano de la cantidad
	// informada — degradado pero explícito, nunca pérdida silenciosa.
	ReconciliarStockTx(tx *gorm.DB, lp *model.LoteProducto, cantidad int) error
}

type corteService struct {
	loteRepo     repository.LoteRepository
	productoRepo repository.ProductoRepository
}

func NewCorteService(loteRepo repository.LoteRepository, productoRepo repository.ProductoRepository) CorteService {
	return &corteService{loteRepo: loteRepo, productoRepo: productoRepo}
}

// GuardarDistribucion persiste la matriz y cachea su total en
// cantidad_producto. Editable en cualquier momento; si el lote ya concilió
// stock, la edición NO reajusta lo acreditado (sin reversa automática).
func (s *corteService) GuardarDistribucion(ctx context.Context, loteProductoID uuid.UUID, req dto.DistribucionRequest) (*dto.LoteProductoResponse, error) {
	lp, err := s.loteRepo.FindLoteProductoByID(ctx, loteProductoID)
	if err != nil {
		return nil, err
	}

	matriz := model.TallasDistribucion(req.Tallas)
	if err := s.validarMatriz(lp, matriz); err != nil {
		return nil, err
	}

	total := matriz.Total()
	txErr := runTx(ctx, s.loteRepo.DB(), func(tx *gorm.DB) error {
		return s.loteRepo.UpdateDistribucionTx(tx, lp.ID, matriz, total)
	})
	if txErr != nil {
		return nil, txErr
	}

	lp, err = s.loteRepo.FindLoteProductoByID(ctx, loteProductoID)
	if err != nil {
		return nil, err
	}
	return loteProductoToResponse(lp), nil
}

// validarMatriz: celdas no negativas y talles pertenecientes al producto.
func (s *corteService) validarMatriz(lp *model.LoteProducto, matriz model.TallasDistribucion) error {
	talles := tallesDelProducto(lp.Producto)
	for color, fila := range matriz {
		if color == "" {
			return &ValidacionError{Campo: "tallas", Motivo: "nombre de color vacio"}
		}
		for talleKey, n := range fila {
			if n < 0 {
				return &ValidacionError{Campo: "tallas", Motivo: "cantidad negativa para color " + color}
			}
			talleID, err := uuid.Parse(talleKey)
			if err != nil {
				return &ValidacionError{Campo: "tallas", Motivo: "id de talle invalido: " + talleKey}
			}
			if _, ok := talles[talleID]; !ok {
				return &ValidacionError{Campo: "tallas", Motivo: "el talle " + talleKey + " no pertenece al producto"}
			}
		}
	}
	return nil
}

func (s *corteService) ReconciliarStockTx(tx *gorm.DB, lp *model.LoteProducto, cantidad int) error {
	matriz := lp.Matriz()

	if matriz.Vacia() {
		// Fallback plano: sin granularidad de talle.
		if cantidad > 0 {
			if err := s.productoRepo.IncrementarStockTx(tx, lp.ProductoID, cantidad); err != nil {
				return err
			}
		}
		return s.loteRepo.UpdateDistribucionTx(tx, lp.ID, matriz, cantidad)
	}

	if err := s.validarMatriz(lp, matriz); err != nil {
		return err
	}

	for _, fila := range matriz {
		for talleKey, n := range fila {
			if n <= 0 {
				continue
			}
			talleID, _ := uuid.Parse(talleKey) // ya validado
			if err := s.productoRepo.IncrementarStockTalleTx(tx, talleID, n); err != nil {
				return err
			}
		}
	}

	if err := s.registrarColoresNuevosTx(tx, lp, matriz); err != nil {
		return err
	}

	return s.loteRepo.UpdateDistribucionTx(tx, lp.ID, matriz, cantidad)
}

// registrarColoresNuevosTx da de alta todo color de la matriz que el producto
// aún no declara, con swatch por palabra clave cuando matchea.
func (s *corteService) registrarColoresNuevosTx(tx *gorm.DB, lp *model.LoteProducto, matriz model.TallasDistribucion) error {
	conocidos := make(map[string]bool)
	if lp.Producto != nil {
		for _, c := range lp.Producto.Colores {
			conocidos[strings.ToLower(c.Nombre)] = true
		}
	}
	for color := range matriz {
		if conocidos[strings.ToLower(color)] {
			continue
		}
		nuevo := &model.ColorProducto{
			ProductoID: lp.ProductoID,
			Nombre:     color,
			Hex:        HexParaColor(color),
		}
		if err := s.productoRepo.AgregarColorTx(tx, nuevo); err != nil {
			return err
		}
		conocidos[strings.ToLower(color)] = true
	}
	return nil
}

// swatches mapea palabras clave de nombre de color a un hex determinístico.
// Si ninguna matchea el hex queda sin asignar — nunca se adivina más allá.
var swatches = []struct {
	clave string
	hex   string
}{
	{"negro", "#1A1A1A"},
	{"blanco", "#FFFFFF"},
	{"melange", "#9E9E9E"},
	{"vison", "#A08C78"},
	{"gris", "#808080"},
	{"azul", "#1F4E9C"},
	{"rojo", "#C62828"},
	{"verde", "#2E7D32"},
	{"beige", "#D9C9A3"},
	{"crudo", "#F2EAD3"},
}

// HexParaColor intenta el mapeo nombre → swatch por substring, sin distinguir
// mayúsculas. Devuelve nil si no hay match.
func HexParaColor(nombre string) *string {
	bajo := strings.ToLower(nombre)
	for _, s := range swatches {
		if strings.Contains(bajo, s.clave) {
			hex := s.hex
			return &hex
		}
	}
	return nil
}

func tallesDelProducto(p *model.Producto) map[uuid.UUID]model.ProductoTalle {
	talles := make(map[uuid.UUID]model.ProductoTalle)
	if p == nil {
		return talles
	}
	for _, t := range p.Talles {
		talles[t.ID] = t
	}
	return talles
}

func loteProductoToResponse(lp *model.LoteProducto) *dto.LoteProductoResponse {
	nombre := ""
	if lp.Producto != nil {
		nombre = lp.Producto.Nombre
	}
	return &dto.LoteProductoResponse{
		ID:               lp.ID.String(),
		ProductoID:       lp.ProductoID.String(),
		ProductoNombre:   nombre,
		Orden:            lp.Orden,
		Tallas:           lp.Matriz(),
		CantidadProducto: lp.CantidadProducto,
	}
}
