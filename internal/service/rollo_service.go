package service

import (
	"context"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"
	"fabricaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RolloService es el libro mayor de material: alta y listado de rollos y el
// consumo atómico contra sus remanentes.
type RolloService interface {
	CrearRollo(ctx context.Context, req dto.CrearRolloRequest) (*dto.RolloResponse, error)
	ListarRollos(ctx context.Context, filter dto.RolloFilter) ([]dto.RolloResponse, error)
	ObtenerRollo(ctx context.Context, id uuid.UUID) (*dto.RolloResponse, error)
	ListarDisponibles(ctx context.Context, filter dto.DisponiblesFilter) ([]dto.RolloResponse, error)

	// ConsumirTx descuenta todas las entradas dentro de la tx del caller.
	// Todo-o-nada: la primera entrada que dejaría un peso en negativo corta
	// con MaterialInsuficienteError antes de escribir nada (fase de lectura
	// con row locks, luego fase de escritura). Entradas que repiten rollo
	// descuentan acumulado contra el mismo saldo.
	ConsumirTx(ctx context.Context, tx *gorm.DB, entradas []dto.ConsumoRolloRequest) ([]model.DetalleRollo, error)
}

type rolloService struct {
	repo repository.RolloRepository
}

func NewRolloService(repo repository.RolloRepository) RolloService {
	return &rolloService{repo: repo}
}

func (s *rolloService) CrearRollo(ctx context.Context, req dto.CrearRolloRequest) (*dto.RolloResponse, error) {
	if req.MetrosIniciales.IsNegative() || req.PesoInicial.IsNegative() {
		return nil, &ValidacionError{Campo: "metros_iniciales/peso_inicial", Motivo: "no pueden ser negativos"}
	}
	if req.MetrosIniciales.IsZero() && req.PesoInicial.IsZero() {
		return nil, &ValidacionError{Campo: "peso_inicial", Motivo: "el rollo necesita metros o peso inicial"}
	}
	rollo := &model.RolloTela{
		Codigo:          req.Codigo,
		TipoTela:        req.TipoTela,
		Color:           req.Color,
		MetrosIniciales: req.MetrosIniciales,
		MetrosRestantes: req.MetrosIniciales,
		PesoInicial:     req.PesoInicial,
		PesoRestante:    req.PesoInicial,
		Encargado:       req.Encargado,
	}
	if err := s.repo.Create(ctx, rollo); err != nil {
		return nil, err
	}
	return rolloToResponse(rollo), nil
}

func (s *rolloService) ListarRollos(ctx context.Context, filter dto.RolloFilter) ([]dto.RolloResponse, error) {
	rollos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return rollosToResponse(rollos), nil
}

func (s *rolloService) ObtenerRollo(ctx context.Context, id uuid.UUID) (*dto.RolloResponse, error) {
	rollo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rolloToResponse(rollo), nil
}

func (s *rolloService) ListarDisponibles(ctx context.Context, filter dto.DisponiblesFilter) ([]dto.RolloResponse, error) {
	rollos, err := s.repo.ListDisponibles(ctx, filter)
	if err != nil {
		return nil, err
	}
	return rollosToResponse(rollos), nil
}

// saldoRollo acumula el remanente de un rollo a lo largo de la fase de
// lectura. Un mismo rollo puede aparecer en varias entradas del plan (un color
// distinto por entrada) y cada una descuenta sobre el saldo ya consumido por
// las anteriores, no sobre el balance original.
type saldoRollo struct {
	rollo  *model.RolloTela
	peso   decimal.Decimal
	metros decimal.Decimal
}

func (s *rolloService) ConsumirTx(ctx context.Context, tx *gorm.DB, entradas []dto.ConsumoRolloRequest) ([]model.DetalleRollo, error) {
	// Fase 1: lock + lectura de todos los rollos, cálculo de remanentes.
	// Nada se escribe hasta validar el plan completo — así un fallo a mitad
	// de lista no deja consumos parciales aplicados. Cada rollo se lockea y
	// lee una sola vez; las entradas repetidas descuentan del saldo corrido.
	saldos := make(map[uuid.UUID]*saldoRollo, len(entradas))
	orden := make([]uuid.UUID, 0, len(entradas))
	detalles := make([]model.DetalleRollo, 0, len(entradas))
	for _, e := range entradas {
		rolloID, err := uuid.Parse(e.RolloID)
		if err != nil {
			return nil, &ValidacionError{Campo: "rollo_id", Motivo: "id de rollo invalido: " + e.RolloID}
		}
		saldo, ok := saldos[rolloID]
		if !ok {
			rollo, err := s.repo.FindForUpdateTx(tx, rolloID)
			if err != nil {
				return nil, err
			}
			saldo = &saldoRollo{rollo: rollo, peso: rollo.PesoRestante, metros: rollo.MetrosRestantes}
			saldos[rolloID] = saldo
			orden = append(orden, rolloID)
		}

		nuevoPeso := saldo.peso.Sub(e.KgConsumido)
		if nuevoPeso.IsNegative() {
			return nil, &MaterialInsuficienteError{
				RolloID:    saldo.rollo.ID,
				Codigo:     saldo.rollo.Codigo,
				Restante:   saldo.peso,
				Solicitado: e.KgConsumido,
			}
		}
		saldo.peso = nuevoPeso
		// Los metros acompañan con la cifra que aporta el caller; en rollos
		// que solo se pesan la cifra llega en cero. Clamp a 0: los metros son
		// informativos, el peso es el que manda.
		saldo.metros = saldo.metros.Sub(e.MetrosConsumidos)
		if saldo.metros.IsNegative() {
			saldo.metros = decimal.Zero
		}

		color := e.Color
		if color == "" {
			color = saldo.rollo.Color
		}
		detalles = append(detalles, model.DetalleRollo{
			RolloID:          saldo.rollo.ID,
			Color:            color,
			KgConsumido:      e.KgConsumido,
			MetrosConsumidos: e.MetrosConsumidos,
		})
	}

	// Fase 2: escritura de los remanentes ya validados, uno por rollo.
	for _, id := range orden {
		saldo := saldos[id]
		if err := s.repo.UpdateRestantesTx(tx, id, saldo.peso, saldo.metros); err != nil {
			return nil, err
		}
	}
	return detalles, nil
}

func rolloToResponse(r *model.RolloTela) *dto.RolloResponse {
	return &dto.RolloResponse{
		ID:              r.ID.String(),
		Codigo:          r.Codigo,
		TipoTela:        r.TipoTela,
		Color:           r.Color,
		MetrosIniciales: r.MetrosIniciales,
		MetrosRestantes: r.MetrosRestantes,
		PesoInicial:     r.PesoInicial,
		PesoRestante:    r.PesoRestante,
		Estado:          r.Estado(),
		Encargado:       r.Encargado,
	}
}

func rollosToResponse(rollos []model.RolloTela) []dto.RolloResponse {
	result := make([]dto.RolloResponse, 0, len(rollos))
	for i := range rollos {
		result = append(result, *rolloToResponse(&rollos[i]))
	}
	return result
}
