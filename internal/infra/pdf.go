package infra

// pdf.go — Cut-sheet ("ficha de corte") generation using go-pdf/fpdf.
// One A4 page per batch with:
//   - Batch code, stage, start/finish dates
//   - Consumed rolls table (roll, color, kg, meters)
//   - Per product: the color × talle distribution matrix with row totals
//
// The output file is saved to storagePath/ficha_{codigo}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fabricaops/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarFichaCorte renders the cut sheet for a batch.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerarFichaCorte(lote *model.LoteProduccion, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("ficha_%s.pdf", lote.Codigo)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, "FabricaOPS", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, "Ficha de Corte", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Batch info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Lote %s", lote.Codigo), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Estado: %s (%d%%)", lote.Estado, lote.Progreso), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Inicio: "+lote.FechaInicio.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if lote.FechaFin != nil {
		pdf.CellFormat(contentW, 5, "Fin: "+lote.FechaFin.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	if lote.Encargado != nil {
		pdf.CellFormat(contentW, 5, "Encargado: "+*lote.Encargado, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Rolls table ───────────────────────────────────────────────────────────
	detalle := lote.DetalleRollos.Data()
	if len(detalle) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Rollos consumidos", "", 1, "L", false, 0, "")

		col1 := contentW * 0.40
		col2 := contentW * 0.28
		col3 := contentW * 0.16
		col4 := contentW * 0.16

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(col1, 5, "Rollo", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "Color", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "Kg", "B", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "Metros", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, d := range detalle {
			pdf.CellFormat(col1, 5, d.RolloID.String()[:8], "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, d.Color, "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 5, d.KgConsumido.StringFixed(2), "", 0, "R", false, 0, "")
			pdf.CellFormat(col4, 5, d.MetrosConsumidos.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	// ── Distribution matrices ─────────────────────────────────────────────────
	for i := range lote.Productos {
		lp := &lote.Productos[i]
		nombre := lp.ProductoID.String()[:8]
		if lp.Producto != nil {
			nombre = lp.Producto.Nombre
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, fmt.Sprintf("%s — %d unidades", nombre, lp.CantidadProducto), "", 1, "L", false, 0, "")

		matriz := lp.Matriz()
		if matriz.Vacia() {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(contentW, 5, "Sin distribucion por talle (total plano)", "", 1, "L", false, 0, "")
			pdf.Ln(3)
			continue
		}

		// Talle columns in the product's declared order; distribution keys
		// are talle ids, headers show the codes.
		var talles []model.ProductoTalle
		if lp.Producto != nil {
			talles = lp.Producto.Talles
		}

		colores := make([]string, 0, len(matriz))
		for color := range matriz {
			colores = append(colores, color)
		}
		sort.Strings(colores)

		colColor := contentW * 0.30
		restante := contentW - colColor - contentW*0.14
		colTalle := restante / float64(max(len(talles), 1))
		colTotal := contentW * 0.14

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(colColor, 5, "Color", "B", 0, "L", false, 0, "")
		for _, t := range talles {
			pdf.CellFormat(colTalle, 5, t.Codigo, "B", 0, "C", false, 0, "")
		}
		pdf.CellFormat(colTotal, 5, "Total", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, color := range colores {
			pdf.CellFormat(colColor, 5, color, "", 0, "L", false, 0, "")
			for _, t := range talles {
				n := matriz[color][t.ID.String()]
				celda := ""
				if n > 0 {
					celda = fmt.Sprintf("%d", n)
				}
				pdf.CellFormat(colTalle, 5, celda, "", 0, "C", false, 0, "")
			}
			pdf.CellFormat(colTotal, 5, fmt.Sprintf("%d", matriz.TotalFila(color)), "", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(colColor+colTalle*float64(len(talles)), 5, "Total producto", "T", 0, "L", false, 0, "")
		pdf.CellFormat(colTotal, 5, fmt.Sprintf("%d", matriz.Total()), "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
