package handler

import (
	"net/http"
	"time"

	"fabricaops/internal/apierror"
	"fabricaops/internal/dto"
	"fabricaops/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditoriaHandler lee el historial de transiciones directamente del
// repositorio; no hay lógica de negocio en la consulta.
type AuditoriaHandler struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaHandler(repo repository.AuditoriaRepository) *AuditoriaHandler {
	return &AuditoriaHandler{repo: repo}
}

func (h *AuditoriaHandler) ListarPorLote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	entradas, err := h.repo.ListByLote(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]dto.AuditoriaResponse, 0, len(entradas))
	for _, a := range entradas {
		out = append(out, dto.AuditoriaResponse{
			ID:        a.ID.String(),
			LoteID:    a.LoteID.String(),
			EtapaDe:   a.EtapaDe,
			EtapaA:    a.EtapaA,
			IndiceDe:  a.IndiceDe,
			IndiceA:   a.IndiceA,
			Encargado: a.Encargado,
			Fecha:     a.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}
