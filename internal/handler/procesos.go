package handler

import (
	"net/http"

	"fabricaops/internal/apierror"
	"fabricaops/internal/dto"
	"fabricaops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProcesosHandler struct{ svc service.ProcesoService }

func NewProcesosHandler(svc service.ProcesoService) *ProcesosHandler {
	return &ProcesosHandler{svc: svc}
}

func (h *ProcesosHandler) Crear(c *gin.Context) {
	var req dto.CrearProcesoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearProceso(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProcesosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarProcesos(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProcesosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerProceso(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProcesosHandler) ReemplazarEtapas(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ReemplazarEtapasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReemplazarEtapas(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
