//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - Ciclo completo de lote: rollo → lote (consumo eager) → etapas → finalizar
//   - Distribución de corte + conciliación de stock por talle
//   - Conflicto optimista en transición concurrente
//   - Material insuficiente rechazado sin efectos

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fabricaops/internal/config"
	"fabricaops/internal/infra"
	"fabricaops/internal/model"
	"fabricaops/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("fabricaops_test"),
		tcPostgres.WithUsername("fabricaops"),
		tcPostgres.WithPassword("fabricaops"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:           8000,
		Env:            "test",
		DatabaseURL:    pgURL,
		RedisURL:       rdURL,
		WorkerPoolSize: 1,
		PDFStoragePath: t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db}
}

// El catálogo de productos pertenece a un colaborador externo: se siembra
// directo en la base, no por la API de este núcleo.
func seedProducto(t *testing.T, db *gorm.DB, nombre string, talles ...string) *model.Producto {
	t.Helper()
	p := &model.Producto{Nombre: nombre, Activo: true}
	for _, codigo := range talles {
		p.Talles = append(p.Talles, model.ProductoTalle{Codigo: codigo})
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeLote(t *testing.T) {
	env := setupTestEnv(t)
	producto := seedProducto(t, env.db, "Remera básica")

	// 1. Alta de rollo
	rolloResp := do(t, env.server, "POST", "/v1/rollos", jsonBody(t, map[string]any{
		"codigo":           "ROL-E2E-001",
		"tipo_tela":        "jersey",
		"color":            "Negro",
		"metros_iniciales": "60",
		"peso_inicial":     "18",
	}))
	require.Equal(t, http.StatusCreated, rolloResp.StatusCode)
	var rollo struct {
		ID string `json:"id"`
	}
	decodeJSON(t, rolloResp, &rollo)

	// 2. Crear lote consumiendo el rollo
	loteResp := do(t, env.server, "POST", "/v1/lotes", jsonBody(t, map[string]any{
		"producto_ids": []string{producto.ID.String()},
		"rollos": []map[string]any{
			{"rollo_id": rollo.ID, "kg_consumido": "6", "metros_consumidos": "20"},
		},
	}))
	require.Equal(t, http.StatusCreated, loteResp.StatusCode)
	var lote struct {
		ID      string `json:"id"`
		Codigo  string `json:"codigo"`
		Estado  string `json:"estado"`
		Version int    `json:"version"`
	}
	decodeJSON(t, loteResp, &lote)
	assert.Equal(t, "planificado", lote.Estado)
	assert.NotEmpty(t, lote.Codigo)

	// 3. El consumo es eager: el remanente bajó de inmediato
	rolloDetalle := do(t, env.server, "GET", "/v1/rollos/"+rollo.ID, nil)
	require.Equal(t, http.StatusOK, rolloDetalle.StatusCode)
	var actualRollo struct {
		PesoRestante string `json:"peso_restante"`
		Estado       string `json:"estado"`
	}
	decodeJSON(t, rolloDetalle, &actualRollo)
	assert.Equal(t, "12", actualRollo.PesoRestante)
	assert.Equal(t, "parcialmente_usado", actualRollo.Estado)

	// 4. Avanzar a corte
	etapaResp := do(t, env.server, "PUT", "/v1/lotes/"+lote.ID+"/etapa", jsonBody(t, map[string]any{
		"etapa":   "corte",
		"version": 0,
	}))
	require.Equal(t, http.StatusOK, etapaResp.StatusCode)
	var avanzado struct {
		Estado   string `json:"estado"`
		Progreso int    `json:"progreso"`
		Version  int    `json:"version"`
	}
	decodeJSON(t, etapaResp, &avanzado)
	assert.Equal(t, "corte", avanzado.Estado)
	assert.Equal(t, 33, avanzado.Progreso)

	// 5. Finalizar con cantidad plana
	finResp := do(t, env.server, "POST", "/v1/lotes/"+lote.ID+"/finalizar", jsonBody(t, map[string]any{
		"cantidades": map[string]int{producto.ID.String(): 15},
		"version":    avanzado.Version,
	}))
	require.Equal(t, http.StatusOK, finResp.StatusCode)
	var finalizado struct {
		Estado   string  `json:"estado"`
		Progreso int     `json:"progreso"`
		FechaFin *string `json:"fecha_fin"`
	}
	decodeJSON(t, finResp, &finalizado)
	assert.Equal(t, "terminado", finalizado.Estado)
	assert.Equal(t, 100, finalizado.Progreso)
	require.NotNil(t, finalizado.FechaFin)

	// 6. Stock plano acreditado
	var actualProducto model.Producto
	require.NoError(t, env.db.First(&actualProducto, "id = ?", producto.ID).Error)
	assert.Equal(t, 15, actualProducto.StockActual)

	// 7. El listado refleja el estado terminal
	listResp := do(t, env.server, "GET", "/v1/lotes?estado=terminado", nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var lista struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &lista)
	assert.EqualValues(t, 1, lista.Total)
}

func TestE2E_DistribucionYConciliacionPorTalle(t *testing.T) {
	env := setupTestEnv(t)
	producto := seedProducto(t, env.db, "Remera estampada", "S", "M")
	talleS := producto.Talles[0].ID
	talleM := producto.Talles[1].ID

	loteResp := do(t, env.server, "POST", "/v1/lotes", jsonBody(t, map[string]any{
		"producto_ids": []string{producto.ID.String()},
	}))
	require.Equal(t, http.StatusCreated, loteResp.StatusCode)
	var lote struct {
		ID        string `json:"id"`
		Productos []struct {
			ID string `json:"id"`
		} `json:"productos"`
	}
	decodeJSON(t, loteResp, &lote)
	require.Len(t, lote.Productos, 1)

	distResp := do(t, env.server, "PUT", "/v1/lotes/productos/"+lote.Productos[0].ID+"/distribucion",
		jsonBody(t, map[string]any{
			"tallas": map[string]map[string]int{
				"Rojo": {talleS.String(): 5, talleM.String(): 3},
			},
		}))
	require.Equal(t, http.StatusOK, distResp.StatusCode)
	var dist struct {
		CantidadProducto int `json:"cantidad_producto"`
	}
	decodeJSON(t, distResp, &dist)
	assert.Equal(t, 8, dist.CantidadProducto)

	finResp := do(t, env.server, "POST", "/v1/lotes/"+lote.ID+"/finalizar", jsonBody(t, map[string]any{
		"version": 0,
	}))
	require.Equal(t, http.StatusOK, finResp.StatusCode)

	var s, m model.ProductoTalle
	require.NoError(t, env.db.First(&s, "id = ?", talleS).Error)
	require.NoError(t, env.db.First(&m, "id = ?", talleM).Error)
	assert.Equal(t, 5, s.Stock)
	assert.Equal(t, 3, m.Stock)

	// El color observado en la matriz queda registrado en el catálogo.
	var colores []model.ColorProducto
	require.NoError(t, env.db.Where("producto_id = ?", producto.ID).Find(&colores).Error)
	require.Len(t, colores, 1)
	assert.Equal(t, "Rojo", colores[0].Nombre)
}

func TestE2E_ConflictoOptimista(t *testing.T) {
	env := setupTestEnv(t)
	producto := seedProducto(t, env.db, "Remera")

	loteResp := do(t, env.server, "POST", "/v1/lotes", jsonBody(t, map[string]any{
		"producto_ids": []string{producto.ID.String()},
	}))
	require.Equal(t, http.StatusCreated, loteResp.StatusCode)
	var lote struct {
		ID string `json:"id"`
	}
	decodeJSON(t, loteResp, &lote)

	primera := do(t, env.server, "PUT", "/v1/lotes/"+lote.ID+"/etapa", jsonBody(t, map[string]any{
		"etapa": "corte", "version": 0,
	}))
	require.Equal(t, http.StatusOK, primera.StatusCode)
	primera.Body.Close()

	// Segundo operador con la versión ya consumida.
	segunda := do(t, env.server, "PUT", "/v1/lotes/"+lote.ID+"/etapa", jsonBody(t, map[string]any{
		"etapa": "taller", "version": 0,
	}))
	assert.Equal(t, http.StatusConflict, segunda.StatusCode)
	segunda.Body.Close()
}

func TestE2E_MaterialInsuficiente(t *testing.T) {
	env := setupTestEnv(t)
	producto := seedProducto(t, env.db, "Remera")

	rolloResp := do(t, env.server, "POST", "/v1/rollos", jsonBody(t, map[string]any{
		"codigo":           "ROL-E2E-010",
		"tipo_tela":        "jersey",
		"color":            "Negro",
		"metros_iniciales": "10",
		"peso_inicial":     "3",
	}))
	require.Equal(t, http.StatusCreated, rolloResp.StatusCode)
	var rollo struct {
		ID string `json:"id"`
	}
	decodeJSON(t, rolloResp, &rollo)

	loteResp := do(t, env.server, "POST", "/v1/lotes", jsonBody(t, map[string]any{
		"producto_ids": []string{producto.ID.String()},
		"rollos": []map[string]any{
			{"rollo_id": rollo.ID, "kg_consumido": "5"},
		},
	}))
	assert.Equal(t, http.StatusConflict, loteResp.StatusCode)
	loteResp.Body.Close()

	// Sin efectos: ni lote creado ni remanente tocado.
	rolloDetalle := do(t, env.server, "GET", "/v1/rollos/"+rollo.ID, nil)
	var actualRollo struct {
		PesoRestante string `json:"peso_restante"`
	}
	decodeJSON(t, rolloDetalle, &actualRollo)
	assert.Equal(t, "3", actualRollo.PesoRestante)

	listResp := do(t, env.server, "GET", "/v1/lotes", nil)
	var lista struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &lista)
	assert.Zero(t, lista.Total)
}
