package service

import (
	"context"
	"fmt"
	"time"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"
	"fabricaops/internal/repository"
	"fabricaops/internal/worker"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoteService es la máquina de estados del lote de producción: creación con
// snapshot de proceso y consumo eager de material, transiciones de etapa y
// finalización con conciliación de stock.
type LoteService interface {
	CrearLote(ctx context.Context, req dto.CrearLoteRequest) (*dto.LoteResponse, error)
	AvanzarEtapa(ctx context.Context, loteID uuid.UUID, req dto.AvanzarEtapaRequest) (*dto.LoteResponse, error)
	Finalizar(ctx context.Context, loteID uuid.UUID, req dto.FinalizarLoteRequest) (*dto.LoteResponse, error)
	AjustarConsumo(ctx context.Context, loteID uuid.UUID, req dto.AjustarConsumoRequest) (*dto.LoteResponse, error)
	ObtenerLote(ctx context.Context, loteID uuid.UUID) (*dto.LoteResponse, error)
	ObtenerLoteModel(ctx context.Context, loteID uuid.UUID) (*model.LoteProduccion, error)
	ListarLotes(ctx context.Context, filter dto.LoteFilter) (*dto.LoteListResponse, error)
}

type loteService struct {
	repo         repository.LoteRepository
	procesoRepo  repository.ProcesoRepository
	productoRepo repository.ProductoRepository
	rollos       RolloService
	corte        CorteService
	dispatcher   *worker.Dispatcher
}

func NewLoteService(
	repo repository.LoteRepository,
	procesoRepo repository.ProcesoRepository,
	productoRepo repository.ProductoRepository,
	rollos RolloService,
	corte CorteService,
	dispatcher *worker.Dispatcher,
) LoteService {
	return &loteService{
		repo:         repo,
		procesoRepo:  procesoRepo,
		productoRepo: productoRepo,
		rollos:       rollos,
		corte:        corte,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CrearLote ────────────────────────────────────────────────────────────────
// 1. Validar selección de productos (1..3, sin duplicados, activos)
// 2. Resolver el proceso efectivo: override → proceso del primer producto →
//    proceso por defecto; congelar sus etapas como snapshot
// 3. BEGIN TX: reservar código, consumir rollos (eager — el inventario refleja
//    la reserva de inmediato), crear lote + lotes_productos
// 4. COMMIT; (async) registrar auditoría

func (s *loteService) CrearLote(ctx context.Context, req dto.CrearLoteRequest) (*dto.LoteResponse, error) {
	if len(req.ProductoIDs) < 1 || len(req.ProductoIDs) > 3 {
		return nil, &ValidacionError{Campo: "producto_ids", Motivo: "un lote cubre entre 1 y 3 productos"}
	}

	vistos := make(map[uuid.UUID]bool)
	productos := make([]*model.Producto, 0, len(req.ProductoIDs))
	for _, raw := range req.ProductoIDs {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return nil, &ValidacionError{Campo: "producto_ids", Motivo: "id de producto invalido: " + raw}
		}
		if vistos[pid] {
			return nil, &ValidacionError{Campo: "producto_ids", Motivo: "producto duplicado: " + raw}
		}
		vistos[pid] = true
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, &ValidacionError{Campo: "producto_ids", Motivo: "producto " + raw + " no encontrado"}
		}
		if !p.Activo {
			return nil, &ValidacionError{Campo: "producto_ids", Motivo: "el producto " + p.Nombre + " esta inactivo"}
		}
		productos = append(productos, p)
	}

	snapshot, err := s.resolverSnapshot(ctx, req.ProcesoID, productos)
	if err != nil {
		return nil, err
	}

	encargado := req.Encargado
	var lote model.LoteProduccion
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		detalle, err := s.rollos.ConsumirTx(ctx, tx, req.Rollos)
		if err != nil {
			return err
		}

		codigo, err := s.generarCodigoTx(tx)
		if err != nil {
			return err
		}

		lote = model.LoteProduccion{
			Codigo:          codigo,
			ProcesoSnapshot: datatypes.NewJSONType(snapshot),
			DetalleRollos:   datatypes.NewJSONType(detalle),
			EtapaActual:     0,
			Estado:          snapshot[0].Nombre,
			Progreso:        0,
			Encargado:       encargado,
			FechaInicio:     time.Now(),
		}
		for i, p := range productos {
			lote.Productos = append(lote.Productos, model.LoteProducto{
				ProductoID:         p.ID,
				Orden:              i,
				TallasDistribucion: datatypes.NewJSONType(model.TallasDistribucion{}),
			})
		}
		return s.repo.CreateTx(tx, &lote)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditar(ctx, &lote, "", snapshot[0].Nombre, 0, 0)

	return s.ObtenerLote(ctx, lote.ID)
}

// resolverSnapshot congela las etapas del proceso efectivo.
func (s *loteService) resolverSnapshot(ctx context.Context, override *string, productos []*model.Producto) ([]model.EtapaSnapshot, error) {
	var procesoID *uuid.UUID
	if override != nil {
		pid, err := uuid.Parse(*override)
		if err != nil {
			return nil, &ValidacionError{Campo: "proceso_id", Motivo: "id de proceso invalido"}
		}
		procesoID = &pid
	} else if len(productos) > 0 && productos[0].ProcesoID != nil {
		procesoID = productos[0].ProcesoID
	}

	if procesoID == nil {
		return model.EtapasPorDefecto(), nil
	}

	proceso, err := s.procesoRepo.FindByID(ctx, *procesoID)
	if err != nil {
		return nil, &ValidacionError{Campo: "proceso_id", Motivo: "proceso " + procesoID.String() + " no encontrado"}
	}
	if len(proceso.Etapas) == 0 {
		return nil, &ValidacionError{Campo: "proceso_id", Motivo: "el proceso " + proceso.Nombre + " no tiene etapas"}
	}
	snapshot := make([]model.EtapaSnapshot, 0, len(proceso.Etapas))
	for _, e := range proceso.Etapas {
		snapshot = append(snapshot, model.EtapaSnapshot{
			Nombre:        e.Nombre,
			Orden:         e.Orden,
			RequiereInput: e.RequiereInput,
		})
	}
	return snapshot, nil
}

func (s *loteService) generarCodigoTx(tx *gorm.DB) (string, error) {
	n, err := s.repo.NextCodigoTx(tx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LOTE-%s-%04d", time.Now().Format("20060102"), n), nil
}

// ── AvanzarEtapa ─────────────────────────────────────────────────────────────
// Los saltos no adyacentes (adelante o atrás) son válidos: la máquina no exige
// progresión estricta, el taller corrige mis-clicks y rehace etapas. La
// historia queda en auditoria_etapas, no en validaciones que bloqueen.

func (s *loteService) AvanzarEtapa(ctx context.Context, loteID uuid.UUID, req dto.AvanzarEtapaRequest) (*dto.LoteResponse, error) {
	lote, err := s.repo.FindByID(ctx, loteID)
	if err != nil {
		return nil, err
	}
	if lote.Finalizado() {
		return nil, &LoteFinalizadoError{LoteID: loteID}
	}

	etapas := lote.Etapas()
	destino := -1
	for i, e := range etapas {
		if e.Nombre == req.Etapa {
			destino = i
			break
		}
	}
	if destino == -1 {
		return nil, &EtapaDesconocidaError{LoteID: loteID, Etapa: req.Etapa}
	}
	if etapas[destino].RequiereInput {
		// Transición diferida: el caller debe juntar cantidades reales y
		// llamar a Finalizar, que hace el mismo movimiento de índice.
		return nil, &EtapaRequiereCantidadesError{LoteID: loteID, Etapa: req.Etapa}
	}

	progreso := model.CalcularProgreso(destino, len(etapas))
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateEtapaTx(tx, loteID, req.Version, destino, etapas[destino].Nombre, progreso)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &ModificacionConcurrenteError{LoteID: loteID}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditar(ctx, lote, lote.Estado, etapas[destino].Nombre, lote.EtapaActual, destino)

	return s.ObtenerLote(ctx, loteID)
}

// ── Finalizar ────────────────────────────────────────────────────────────────
// Mueve el lote a su etapa terminal y concilia stock en la misma tx: o el
// lote queda finalizado con todo el stock acreditado, o nada cambió. Un lote
// ya finalizado rechaza el segundo intento (guarda sobre fecha_fin).

func (s *loteService) Finalizar(ctx context.Context, loteID uuid.UUID, req dto.FinalizarLoteRequest) (*dto.LoteResponse, error) {
	lote, err := s.repo.FindByID(ctx, loteID)
	if err != nil {
		return nil, err
	}
	if lote.Finalizado() {
		return nil, &LoteFinalizadoError{LoteID: loteID}
	}

	etapas := lote.Etapas()
	terminal := len(etapas) - 1

	// Cantidad por producto: la informada por el operador o, por defecto, el
	// total de su matriz (el cache previo cuando la matriz está vacía).
	cantidades := make(map[uuid.UUID]int, len(lote.Productos))
	for i := range lote.Productos {
		lp := &lote.Productos[i]
		cantidad := lp.Matriz().Total()
		if cantidad == 0 {
			cantidad = lp.CantidadProducto
		}
		if n, ok := req.Cantidades[lp.ProductoID.String()]; ok {
			cantidad = n
		}
		if cantidad < 0 {
			return nil, &ValidacionError{Campo: "cantidades", Motivo: "cantidad negativa para producto " + lp.ProductoID.String()}
		}
		cantidades[lp.ProductoID] = cantidad
	}

	fin := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.FinalizarTx(tx, loteID, req.Version, terminal, etapas[terminal].Nombre, fin)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &ModificacionConcurrenteError{LoteID: loteID}
		}
		for i := range lote.Productos {
			lp := &lote.Productos[i]
			if err := s.corte.ReconciliarStockTx(tx, lp, cantidades[lp.ProductoID]); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditar(ctx, lote, lote.Estado, etapas[terminal].Nombre, lote.EtapaActual, terminal)

	// Notificación al supervisor con la ficha de corte — best-effort.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueNotificacion(ctx, worker.NotificacionJobPayload{
			LoteID: loteID.String(),
			Codigo: lote.Codigo,
		})
	}

	return s.ObtenerLote(ctx, loteID)
}

// ── AjustarConsumo ───────────────────────────────────────────────────────────
// Sobrescribe el plan de consumo guardado SIN volver a tocar los remanentes de
// los rollos: una vez posteado el consumo inicial ambos quedan desacoplados.
// Es una corrección contable, no una re-reserva. Válido también post-finalización.

func (s *loteService) AjustarConsumo(ctx context.Context, loteID uuid.UUID, req dto.AjustarConsumoRequest) (*dto.LoteResponse, error) {
	if _, err := s.repo.FindByID(ctx, loteID); err != nil {
		return nil, err
	}

	detalle := make([]model.DetalleRollo, 0, len(req.Rollos))
	for _, e := range req.Rollos {
		rolloID, err := uuid.Parse(e.RolloID)
		if err != nil {
			return nil, &ValidacionError{Campo: "rollos", Motivo: "id de rollo invalido: " + e.RolloID}
		}
		if e.KgConsumido.IsNegative() || e.MetrosConsumidos.IsNegative() {
			return nil, &ValidacionError{Campo: "rollos", Motivo: "consumo negativo para rollo " + e.RolloID}
		}
		detalle = append(detalle, model.DetalleRollo{
			RolloID:          rolloID,
			Color:            e.Color,
			KgConsumido:      e.KgConsumido,
			MetrosConsumidos: e.MetrosConsumidos,
		})
	}

	if err := s.repo.UpdateDetalleRollos(ctx, loteID, detalle); err != nil {
		return nil, err
	}
	return s.ObtenerLote(ctx, loteID)
}

func (s *loteService) ObtenerLote(ctx context.Context, loteID uuid.UUID) (*dto.LoteResponse, error) {
	lote, err := s.repo.FindByID(ctx, loteID)
	if err != nil {
		return nil, err
	}
	return loteToResponse(lote), nil
}

func (s *loteService) ObtenerLoteModel(ctx context.Context, loteID uuid.UUID) (*model.LoteProduccion, error) {
	return s.repo.FindByID(ctx, loteID)
}

func (s *loteService) ListarLotes(ctx context.Context, filter dto.LoteFilter) (*dto.LoteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	lotes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LoteResponse, 0, len(lotes))
	for i := range lotes {
		items = append(items, *loteToResponse(&lotes[i]))
	}
	return &dto.LoteListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *loteService) auditar(ctx context.Context, lote *model.LoteProduccion, de, a string, indiceDe, indiceA int) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.AuditoriaJobPayload{
		LoteID:   lote.ID.String(),
		EtapaDe:  de,
		EtapaA:   a,
		IndiceDe: indiceDe,
		IndiceA:  indiceA,
	}
	if lote.Encargado != nil {
		payload.Encargado = *lote.Encargado
	}
	_ = s.dispatcher.EnqueueAuditoria(ctx, payload)
}

func loteToResponse(l *model.LoteProduccion) *dto.LoteResponse {
	etapas := make([]dto.EtapaResponse, 0, len(l.Etapas()))
	for _, e := range l.Etapas() {
		etapas = append(etapas, dto.EtapaResponse{
			Nombre:        e.Nombre,
			Orden:         e.Orden,
			RequiereInput: e.RequiereInput,
		})
	}
	rollos := make([]dto.ConsumoRolloResponse, 0, len(l.DetalleRollos.Data()))
	for _, d := range l.DetalleRollos.Data() {
		rollos = append(rollos, dto.ConsumoRolloResponse{
			RolloID:          d.RolloID.String(),
			Color:            d.Color,
			KgConsumido:      d.KgConsumido,
			MetrosConsumidos: d.MetrosConsumidos,
		})
	}
	productos := make([]dto.LoteProductoResponse, 0, len(l.Productos))
	for i := range l.Productos {
		productos = append(productos, *loteProductoToResponse(&l.Productos[i]))
	}
	var fin *string
	if l.FechaFin != nil {
		f := l.FechaFin.Format(time.RFC3339)
		fin = &f
	}
	return &dto.LoteResponse{
		ID:          l.ID.String(),
		Codigo:      l.Codigo,
		Etapas:      etapas,
		EtapaActual: l.EtapaActual,
		Estado:      l.Estado,
		Progreso:    l.Progreso,
		Version:     l.Version,
		Rollos:      rollos,
		Productos:   productos,
		Encargado:   l.Encargado,
		FechaInicio: l.FechaInicio.Format(time.RFC3339),
		FechaFin:    fin,
	}
}
