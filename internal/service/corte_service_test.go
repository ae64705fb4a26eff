package service

import (
	"context"
	"testing"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crearLoteConProducto(t *testing.T, f *fixture, talles ...string) (*dto.LoteResponse, *model.Producto) {
	t.Helper()
	producto := f.producto("Remera", talles...)
	lote, err := f.lotes.CrearLote(context.Background(), dto.CrearLoteRequest{
		ProductoIDs: []string{producto.ID.String()},
	})
	require.NoError(t, err)
	return lote, producto
}

func TestGuardarDistribucionCacheaTotal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lote, producto := crearLoteConProducto(t, f, "S", "M", "L")
	talleS := producto.Talles[0].ID.String()
	talleM := producto.Talles[1].ID.String()

	resp, err := f.corte.GuardarDistribucion(ctx, uuid.MustParse(lote.Productos[0].ID), dto.DistribucionRequest{
		Tallas: map[string]map[string]int{
			"Negro":  {talleS: 4, talleM: 6},
			"Blanco": {talleS: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, resp.CantidadProducto)
	assert.Equal(t, 4, resp.Tallas["Negro"][talleS])
	assert.Equal(t, 2, resp.Tallas["Blanco"][talleS])
}

func TestGuardarDistribucionEsReeditable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lote, producto := crearLoteConProducto(t, f, "S")
	lpID := uuid.MustParse(lote.Productos[0].ID)
	talleS := producto.Talles[0].ID.String()

	_, err := f.corte.GuardarDistribucion(ctx, lpID, dto.DistribucionRequest{
		Tallas: map[string]map[string]int{"Negro": {talleS: 10}},
	})
	require.NoError(t, err)

	resp, err := f.corte.GuardarDistribucion(ctx, lpID, dto.DistribucionRequest{
		Tallas: map[string]map[string]int{"Negro": {talleS: 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.CantidadProducto, "la edición pisa la matriz completa")
}

func TestGuardarDistribucionRechazaCeldaNegativa(t *testing.T) {
	f := newFixture()
	lote, producto := crearLoteConProducto(t, f, "S")

	_, err := f.corte.GuardarDistribucion(context.Background(), uuid.MustParse(lote.Productos[0].ID), dto.DistribucionRequest{
		Tallas: map[string]map[string]int{
			"Negro": {producto.Talles[0].ID.String(): -1},
		},
	})
	var vErr *ValidacionError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Motivo, "negativa")
}

func TestGuardarDistribucionRechazaTalleAjeno(t *testing.T) {
	f := newFixture()
	lote, _ := crearLoteConProducto(t, f, "S")

	_, err := f.corte.GuardarDistribucion(context.Background(), uuid.MustParse(lote.Productos[0].ID), dto.DistribucionRequest{
		Tallas: map[string]map[string]int{
			"Negro": {uuid.New().String(): 3},
		},
	})
	var vErr *ValidacionError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Motivo, "no pertenece")
}

func TestGuardarDistribucionRechazaColorVacio(t *testing.T) {
	f := newFixture()
	lote, producto := crearLoteConProducto(t, f, "S")

	_, err := f.corte.GuardarDistribucion(context.Background(), uuid.MustParse(lote.Productos[0].ID), dto.DistribucionRequest{
		Tallas: map[string]map[string]int{
			"": {producto.Talles[0].ID.String(): 3},
		},
	})
	var vErr *ValidacionError
	require.ErrorAs(t, err, &vErr)
}

func TestGuardarDistribucionLoteProductoInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.corte.GuardarDistribucion(context.Background(), uuid.New(), dto.DistribucionRequest{
		Tallas: map[string]map[string]int{},
	})
	require.Error(t, err)
}

func TestHexParaColor(t *testing.T) {
	cases := []struct {
		nombre string
		hex    string // "" = sin match
	}{
		{"Negro", "#1A1A1A"},
		{"negro profundo", "#1A1A1A"},
		{"Gris Melange", "#9E9E9E"}, // melange gana sobre gris
		{"Azul francia", "#1F4E9C"},
		{"Crudo", "#F2EAD3"},
		{"Fucsia", ""},
	}
	for _, tc := range cases {
		got := HexParaColor(tc.nombre)
		if tc.hex == "" {
			assert.Nil(t, got, tc.nombre)
			continue
		}
		require.NotNil(t, got, tc.nombre)
		assert.Equal(t, tc.hex, *got, tc.nombre)
	}
}

func TestReconciliarIgnoraCeldasEnCero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lote, producto := crearLoteConProducto(t, f, "S", "M")
	talleS := producto.Talles[0].ID
	talleM := producto.Talles[1].ID

	_, err := f.corte.GuardarDistribucion(ctx, uuid.MustParse(lote.Productos[0].ID), dto.DistribucionRequest{
		Tallas: map[string]map[string]int{
			"Negro": {talleS.String(): 9, talleM.String(): 0},
		},
	})
	require.NoError(t, err)

	_, err = f.lotes.Finalizar(ctx, uuid.MustParse(lote.ID), dto.FinalizarLoteRequest{Version: 0})
	require.NoError(t, err)

	assert.Equal(t, 9, f.productoRepo.talles[talleS].Stock)
	assert.Equal(t, 0, f.productoRepo.talles[talleM].Stock)
}
