package handler

import (
	"net/http"

	"fabricaops/internal/apierror"
	"fabricaops/internal/dto"
	"fabricaops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RollosHandler struct{ svc service.RolloService }

func NewRollosHandler(svc service.RolloService) *RollosHandler {
	return &RollosHandler{svc: svc}
}

func (h *RollosHandler) Crear(c *gin.Context) {
	var req dto.CrearRolloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearRollo(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RollosHandler) Listar(c *gin.Context) {
	filter := dto.RolloFilter{
		Estado:   c.Query("estado"),
		TipoTela: c.Query("tipo_tela"),
	}
	resp, err := h.svc.ListarRollos(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RollosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerRollo(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Disponibles lista los rollos candidatos para armar un lote: con metros
// útiles O peso útil, filtrables por tipo de tela y metraje mínimo.
func (h *RollosHandler) Disponibles(c *gin.Context) {
	filter := dto.DisponiblesFilter{TipoTela: c.Query("tipo_tela")}
	if raw := c.Query("min_metros"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("min_metros invalido"))
			return
		}
		filter.MinMetros = min
	}
	resp, err := h.svc.ListarDisponibles(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
