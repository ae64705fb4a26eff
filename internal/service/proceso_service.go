package service

import (
	"context"
	"sort"

	"fabricaops/internal/dto"
	"fabricaops/internal/model"
	"fabricaops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcesoService administra el registro de procesos productivos.
// Los procesos son append-only en la práctica: no hay operación de borrado.
type ProcesoService interface {
	CrearProceso(ctx context.Context, req dto.CrearProcesoRequest) (*dto.ProcesoResponse, error)
	ListarProcesos(ctx context.Context) ([]dto.ProcesoResponse, error)
	ObtenerProceso(ctx context.Context, id uuid.UUID) (*dto.ProcesoResponse, error)
	ReemplazarEtapas(ctx context.Context, id uuid.UUID, req dto.ReemplazarEtapasRequest) (*dto.ProcesoResponse, error)
}

type procesoService struct {
	repo repository.ProcesoRepository
}

func NewProcesoService(repo repository.ProcesoRepository) ProcesoService {
	return &procesoService{repo: repo}
}

// normalizarEtapas ordena por el orden pedido y reasigna 0..n-1 contiguo.
// El orden recibido solo define la secuencia relativa, nunca se persiste tal cual.
func normalizarEtapas(etapas []dto.EtapaRequest) ([]model.EtapaProceso, error) {
	if len(etapas) == 0 {
		return nil, &ValidacionError{Campo: "etapas", Motivo: "la lista de etapas no puede estar vacia"}
	}
	ordenadas := make([]dto.EtapaRequest, len(etapas))
	copy(ordenadas, etapas)
	sort.SliceStable(ordenadas, func(i, j int) bool { return ordenadas[i].Orden < ordenadas[j].Orden })

	result := make([]model.EtapaProceso, 0, len(ordenadas))
	for i, e := range ordenadas {
		if e.Nombre == "" {
			return nil, &ValidacionError{Campo: "etapas", Motivo: "toda etapa necesita nombre"}
		}
		result = append(result, model.EtapaProceso{
			Nombre:        e.Nombre,
			Orden:         i,
			RequiereInput: e.RequiereInput,
		})
	}
	return result, nil
}

func (s *procesoService) CrearProceso(ctx context.Context, req dto.CrearProcesoRequest) (*dto.ProcesoResponse, error) {
	etapas, err := normalizarEtapas(req.Etapas)
	if err != nil {
		return nil, err
	}
	proceso := &model.ProcesoProductivo{
		Nombre: req.Nombre,
		Etapas: etapas,
	}
	if err := s.repo.Create(ctx, proceso); err != nil {
		return nil, err
	}
	return procesoToResponse(proceso), nil
}

func (s *procesoService) ListarProcesos(ctx context.Context) ([]dto.ProcesoResponse, error) {
	procesos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProcesoResponse, 0, len(procesos))
	for i := range procesos {
		result = append(result, *procesoToResponse(&procesos[i]))
	}
	return result, nil
}

func (s *procesoService) ObtenerProceso(ctx context.Context, id uuid.UUID) (*dto.ProcesoResponse, error) {
	proceso, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return procesoToResponse(proceso), nil
}

// ReemplazarEtapas hace full replace (delete + insert) dentro de una tx.
// Ediciones concurrentes del mismo proceso resuelven last-writer-wins; los
// lotes en curso no se ven afectados porque llevan su snapshot propio.
func (s *procesoService) ReemplazarEtapas(ctx context.Context, id uuid.UUID, req dto.ReemplazarEtapasRequest) (*dto.ProcesoResponse, error) {
	etapas, err := normalizarEtapas(req.Etapas)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.ReplaceEtapasTx(tx, id, etapas)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.ObtenerProceso(ctx, id)
}

func procesoToResponse(p *model.ProcesoProductivo) *dto.ProcesoResponse {
	etapas := make([]dto.EtapaResponse, 0, len(p.Etapas))
	for _, e := range p.Etapas {
		etapas = append(etapas, dto.EtapaResponse{
			Nombre:        e.Nombre,
			Orden:         e.Orden,
			RequiereInput: e.RequiereInput,
		})
	}
	return &dto.ProcesoResponse{
		ID:     p.ID.String(),
		Nombre: p.Nombre,
		Etapas: etapas,
	}
}
