package worker

// notificacion_worker.go
// Processes jobs from QueueNotificacion: generates the cut-sheet PDF for a
// finalized batch and mails it to the workshop supervisor. SMTP goes through
// the circuit breaker so a downed mail server fast-fails instead of piling up
// blocked workers.

import (
	"context"
	"encoding/json"
	"fmt"

	"fabricaops/internal/infra"
	"fabricaops/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificacionJobPayload is the job envelope sent to QueueNotificacion.
type NotificacionJobPayload struct {
	LoteID string `json:"lote_id"`
	Codigo string `json:"codigo"`
}

type NotificacionWorker struct {
	loteRepo    repository.LoteRepository
	mailer      *infra.Mailer
	cb          *infra.CircuitBreaker
	storagePath string
	toEmail     string
}

func NewNotificacionWorker(loteRepo repository.LoteRepository, mailer *infra.Mailer, cb *infra.CircuitBreaker, storagePath, toEmail string) *NotificacionWorker {
	return &NotificacionWorker{
		loteRepo:    loteRepo,
		mailer:      mailer,
		cb:          cb,
		storagePath: storagePath,
		toEmail:     toEmail,
	}
}

func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload NotificacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return nil // malformed payloads don't get retried
	}
	if w.toEmail == "" {
		log.Debug().Msg("notificacion_worker: no supervisor email configured — skipping")
		return nil
	}
	loteID, err := uuid.Parse(payload.LoteID)
	if err != nil {
		log.Error().Str("lote_id", payload.LoteID).Msg("notificacion_worker: invalid lote_id")
		return nil
	}

	lote, err := w.loteRepo.FindByID(ctx, loteID)
	if err != nil {
		return fmt.Errorf("notificacion_worker: load lote %s: %w", payload.LoteID, err)
	}

	pdfPath, err := infra.GenerarFichaCorte(lote, w.storagePath)
	if err != nil {
		return fmt.Errorf("notificacion_worker: generate ficha: %w", err)
	}

	subject := fmt.Sprintf("Lote %s finalizado", lote.Codigo)
	body := fmt.Sprintf("El lote %s fue finalizado. Se adjunta la ficha de corte.", lote.Codigo)

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendFicha(w.toEmail, subject, body, pdfPath)
	})
	if sendErr != nil {
		return fmt.Errorf("notificacion_worker: send email: %w", sendErr)
	}

	log.Info().Str("lote", lote.Codigo).Str("to", w.toEmail).Msg("notificacion_worker: ficha sent")
	return nil
}
