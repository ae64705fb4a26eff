package service

// Stubs en memoria de los repositorios. Replican la semántica observable de
// la implementación GORM (chequeo optimista por versión, guarda sobre
// fecha_fin, filtros derivados) para testear los servicios sin base de datos.

import (
	"context"
	"sort"
	"strings"
	"time"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── ProcesoRepository ────────────────────────────────────────────────────────

type stubProcesoRepo struct {
	procesos map[uuid.UUID]*model.ProcesoProductivo
}

func newStubProcesoRepo() *stubProcesoRepo {
	return &stubProcesoRepo{procesos: make(map[uuid.UUID]*model.ProcesoProductivo)}
}

func (r *stubProcesoRepo) Create(_ context.Context, p *model.ProcesoProductivo) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Etapas {
		if p.Etapas[i].ID == uuid.Nil {
			p.Etapas[i].ID = uuid.New()
		}
		p.Etapas[i].ProcesoID = p.ID
	}
	cloned := *p
	r.procesos[p.ID] = &cloned
	return nil
}

func (r *stubProcesoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProcesoProductivo, error) {
	p, ok := r.procesos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	etapas := make([]model.EtapaProceso, len(p.Etapas))
	copy(etapas, p.Etapas)
	sort.Slice(etapas, func(i, j int) bool { return etapas[i].Orden < etapas[j].Orden })
	cloned.Etapas = etapas
	return &cloned, nil
}

func (r *stubProcesoRepo) List(ctx context.Context) ([]model.ProcesoProductivo, error) {
	result := make([]model.ProcesoProductivo, 0, len(r.procesos))
	for id := range r.procesos {
		p, _ := r.FindByID(ctx, id)
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Nombre < result[j].Nombre })
	return result, nil
}

func (r *stubProcesoRepo) ReplaceEtapasTx(_ *gorm.DB, procesoID uuid.UUID, etapas []model.EtapaProceso) error {
	p, ok := r.procesos[procesoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range etapas {
		if etapas[i].ID == uuid.Nil {
			etapas[i].ID = uuid.New()
		}
		etapas[i].ProcesoID = procesoID
	}
	p.Etapas = etapas
	return nil
}

func (r *stubProcesoRepo) DB() *gorm.DB { return nil }

// ── RolloRepository ──────────────────────────────────────────────────────────

type stubRolloRepo struct {
	rollos map[uuid.UUID]*model.RolloTela
}

func newStubRolloRepo() *stubRolloRepo {
	return &stubRolloRepo{rollos: make(map[uuid.UUID]*model.RolloTela)}
}

func (r *stubRolloRepo) Create(_ context.Context, rollo *model.RolloTela) error {
	if rollo.ID == uuid.Nil {
		rollo.ID = uuid.New()
	}
	cloned := *rollo
	r.rollos[rollo.ID] = &cloned
	return nil
}

func (r *stubRolloRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RolloTela, error) {
	rollo, ok := r.rollos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *rollo
	return &cloned, nil
}

func (r *stubRolloRepo) List(_ context.Context, filter dto.RolloFilter) ([]model.RolloTela, error) {
	result := make([]model.RolloTela, 0, len(r.rollos))
	for _, rollo := range r.rollos {
		if filter.TipoTela != "" && rollo.TipoTela != filter.TipoTela {
			continue
		}
		if filter.Estado != "" && rollo.Estado() != filter.Estado {
			continue
		}
		result = append(result, *rollo)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Codigo < result[j].Codigo })
	return result, nil
}

func (r *stubRolloRepo) ListDisponibles(_ context.Context, filter dto.DisponiblesFilter) ([]model.RolloTela, error) {
	result := make([]model.RolloTela, 0, len(r.rollos))
	for _, rollo := range r.rollos {
		if !rollo.Seleccionable() {
			continue
		}
		if filter.TipoTela != "" && rollo.TipoTela != filter.TipoTela {
			continue
		}
		if filter.MinMetros.IsPositive() && rollo.MetrosRestantes.LessThan(filter.MinMetros) {
			continue
		}
		result = append(result, *rollo)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Codigo < result[j].Codigo })
	return result, nil
}

func (r *stubRolloRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.RolloTela, error) {
	rollo, ok := r.rollos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *rollo
	return &cloned, nil
}

func (r *stubRolloRepo) UpdateRestantesTx(_ *gorm.DB, id uuid.UUID, peso, metros decimal.Decimal) error {
	rollo, ok := r.rollos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rollo.PesoRestante = peso
	rollo.MetrosRestantes = metros
	return nil
}

func (r *stubRolloRepo) DB() *gorm.DB { return nil }

// ── ProductoRepository ───────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	talles    map[uuid.UUID]*model.ProductoTalle
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos: make(map[uuid.UUID]*model.Producto),
		talles:    make(map[uuid.UUID]*model.ProductoTalle),
	}
}

func (r *stubProductoRepo) add(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Talles {
		if p.Talles[i].ID == uuid.Nil {
			p.Talles[i].ID = uuid.New()
		}
		p.Talles[i].ProductoID = p.ID
	}
	for i := range p.Colores {
		if p.Colores[i].ID == uuid.Nil {
			p.Colores[i].ID = uuid.New()
		}
		p.Colores[i].ProductoID = p.ID
	}
	r.productos[p.ID] = p
	for i := range p.Talles {
		r.talles[p.Talles[i].ID] = &p.Talles[i]
	}
	return p
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	cloned.Talles = make([]model.ProductoTalle, len(p.Talles))
	copy(cloned.Talles, p.Talles)
	cloned.Colores = make([]model.ColorProducto, len(p.Colores))
	copy(cloned.Colores, p.Colores)
	return &cloned, nil
}

func (r *stubProductoRepo) IncrementarStockTx(_ *gorm.DB, productoID uuid.UUID, delta int) error {
	p, ok := r.productos[productoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockActual += delta
	return nil
}

func (r *stubProductoRepo) IncrementarStockTalleTx(_ *gorm.DB, talleID uuid.UUID, delta int) error {
	t, ok := r.talles[talleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Stock += delta
	return nil
}

func (r *stubProductoRepo) AgregarColorTx(_ *gorm.DB, color *model.ColorProducto) error {
	p, ok := r.productos[color.ProductoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, c := range p.Colores {
		if strings.EqualFold(c.Nombre, color.Nombre) {
			return nil // ON CONFLICT DO NOTHING
		}
	}
	if color.ID == uuid.Nil {
		color.ID = uuid.New()
	}
	p.Colores = append(p.Colores, *color)
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

// ── LoteRepository ───────────────────────────────────────────────────────────

type stubLoteRepo struct {
	lotes     map[uuid.UUID]*model.LoteProduccion
	productos *stubProductoRepo
	seq       int64
}

func newStubLoteRepo(productos *stubProductoRepo) *stubLoteRepo {
	return &stubLoteRepo{
		lotes:     make(map[uuid.UUID]*model.LoteProduccion),
		productos: productos,
	}
}

func (r *stubLoteRepo) CreateTx(_ *gorm.DB, lote *model.LoteProduccion) error {
	if lote.ID == uuid.Nil {
		lote.ID = uuid.New()
	}
	for i := range lote.Productos {
		if lote.Productos[i].ID == uuid.Nil {
			lote.Productos[i].ID = uuid.New()
		}
		lote.Productos[i].LoteID = lote.ID
	}
	cloned := *lote
	cloned.Productos = make([]model.LoteProducto, len(lote.Productos))
	copy(cloned.Productos, lote.Productos)
	r.lotes[lote.ID] = &cloned
	return nil
}

func (r *stubLoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LoteProduccion, error) {
	lote, ok := r.lotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *lote
	cloned.Productos = make([]model.LoteProducto, len(lote.Productos))
	copy(cloned.Productos, lote.Productos)
	for i := range cloned.Productos {
		if p, err := r.productos.FindByID(context.Background(), cloned.Productos[i].ProductoID); err == nil {
			cloned.Productos[i].Producto = p
		}
	}
	return &cloned, nil
}

func (r *stubLoteRepo) List(ctx context.Context, filter dto.LoteFilter) ([]model.LoteProduccion, int64, error) {
	matched := make([]model.LoteProduccion, 0, len(r.lotes))
	for id := range r.lotes {
		if filter.Estado != "" && r.lotes[id].Estado != filter.Estado {
			continue
		}
		lote, _ := r.FindByID(ctx, id)
		matched = append(matched, *lote)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].FechaInicio.After(matched[j].FechaInicio) })
	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *stubLoteRepo) UpdateEtapaTx(_ *gorm.DB, id uuid.UUID, version, etapa int, estado string, progreso int) (int64, error) {
	lote, ok := r.lotes[id]
	if !ok || lote.Version != version {
		return 0, nil
	}
	lote.EtapaActual = etapa
	lote.Estado = estado
	lote.Progreso = progreso
	lote.Version++
	return 1, nil
}

func (r *stubLoteRepo) FinalizarTx(_ *gorm.DB, id uuid.UUID, version, etapa int, estado string, fin time.Time) (int64, error) {
	lote, ok := r.lotes[id]
	if !ok || lote.Version != version || lote.FechaFin != nil {
		return 0, nil
	}
	lote.EtapaActual = etapa
	lote.Estado = estado
	lote.Progreso = 100
	lote.FechaFin = &fin
	lote.Version++
	return 1, nil
}

func (r *stubLoteRepo) UpdateDetalleRollos(_ context.Context, id uuid.UUID, detalle []model.DetalleRollo) error {
	lote, ok := r.lotes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	lote.DetalleRollos = datatypes.NewJSONType(detalle)
	return nil
}

func (r *stubLoteRepo) FindLoteProductoByID(ctx context.Context, id uuid.UUID) (*model.LoteProducto, error) {
	for _, lote := range r.lotes {
		for i := range lote.Productos {
			if lote.Productos[i].ID == id {
				cloned := lote.Productos[i]
				if p, err := r.productos.FindByID(ctx, cloned.ProductoID); err == nil {
					cloned.Producto = p
				}
				return &cloned, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLoteRepo) UpdateDistribucionTx(_ *gorm.DB, id uuid.UUID, matriz model.TallasDistribucion, cantidad int) error {
	for _, lote := range r.lotes {
		for i := range lote.Productos {
			if lote.Productos[i].ID == id {
				lote.Productos[i].TallasDistribucion = datatypes.NewJSONType(matriz)
				lote.Productos[i].CantidadProducto = cantidad
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubLoteRepo) NextCodigoTx(_ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubLoteRepo) DB() *gorm.DB { return nil }
