package handler

import (
	"net/http"
	"strconv"

	"fabricaops/internal/apierror"
	"fabricaops/internal/dto"
	"fabricaops/internal/infra"
	"fabricaops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LotesHandler struct {
	svc         service.LoteService
	corte       service.CorteService
	storagePath string
}

func NewLotesHandler(svc service.LoteService, corte service.CorteService, storagePath string) *LotesHandler {
	return &LotesHandler{svc: svc, corte: corte, storagePath: storagePath}
}

func (h *LotesHandler) Crear(c *gin.Context) {
	var req dto.CrearLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearLote(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *LotesHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter := dto.LoteFilter{
		Estado: c.Query("estado"),
		Page:   page,
		Limit:  limit,
	}
	resp, err := h.svc.ListarLotes(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerLote(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotesHandler) AvanzarEtapa(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AvanzarEtapaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AvanzarEtapa(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotesHandler) Finalizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.FinalizarLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Finalizar(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotesHandler) AjustarConsumo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AjustarConsumoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarConsumo(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GuardarDistribucion edita la matriz color × talle de un producto del lote.
func (h *LotesHandler) GuardarDistribucion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.DistribucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.corte.GuardarDistribucion(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ficha genera y sirve la ficha de corte en PDF.
func (h *LotesHandler) Ficha(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	lote, err := h.svc.ObtenerLoteModel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	path, err := infra.GenerarFichaCorte(lote, h.storagePath)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.FileAttachment(path, "ficha_"+lote.Codigo+".pdf")
}
