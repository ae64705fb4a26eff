package worker

// auditoria_worker.go
// Persists the append-only stage-transition log. The state machine does not
// block on this write: the entry travels through the queue and lands here.

import (
	"context"
	"encoding/json"
	"fmt"

	"fabricaops/internal/model"
	"fabricaops/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuditoriaJobPayload is the job envelope sent to QueueAuditoria.
type AuditoriaJobPayload struct {
	LoteID    string `json:"lote_id"`
	EtapaDe   string `json:"etapa_de"`
	EtapaA    string `json:"etapa_a"`
	IndiceDe  int    `json:"indice_de"`
	IndiceA   int    `json:"indice_a"`
	Encargado string `json:"encargado,omitempty"`
}

// AuditoriaWorker writes audit rows from queued transition events.
type AuditoriaWorker struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaWorker(repo repository.AuditoriaRepository) *AuditoriaWorker {
	return &AuditoriaWorker{repo: repo}
}

func (w *AuditoriaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AuditoriaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("auditoria_worker: invalid payload")
		return nil // malformed payloads don't get retried
	}
	loteID, err := uuid.Parse(payload.LoteID)
	if err != nil {
		log.Error().Str("lote_id", payload.LoteID).Msg("auditoria_worker: invalid lote_id")
		return nil
	}

	entrada := &model.AuditoriaEtapa{
		LoteID:   loteID,
		EtapaDe:  payload.EtapaDe,
		EtapaA:   payload.EtapaA,
		IndiceDe: payload.IndiceDe,
		IndiceA:  payload.IndiceA,
	}
	if payload.Encargado != "" {
		entrada.Encargado = &payload.Encargado
	}

	if err := w.repo.Create(ctx, entrada); err != nil {
		return fmt.Errorf("auditoria_worker: persist entry: %w", err)
	}
	log.Debug().
		Str("lote_id", payload.LoteID).
		Str("de", payload.EtapaDe).
		Str("a", payload.EtapaA).
		Msg("auditoria_worker: transition recorded")
	return nil
}
