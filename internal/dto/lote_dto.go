package dto

import "github.com/shopspring/decimal"

// ConsumoRolloRequest es una entrada del plan de consumo: cuánto descontar de
// cada rollo al crear el lote. Los metros son opcionales — la UI aporta ambas
// cifras cuando el rollo se mide en metros; la proporción no se modela aparte.
type ConsumoRolloRequest struct {
	RolloID          string          `json:"rollo_id" validate:"required,uuid"`
	Color            string          `json:"color"`
	KgConsumido      decimal.Decimal `json:"kg_consumido" validate:"min=0"`
	MetrosConsumidos decimal.Decimal `json:"metros_consumidos" validate:"min=0"`
}

type CrearLoteRequest struct {
	ProductoIDs []string              `json:"producto_ids" validate:"required,min=1,max=3,dive,uuid"`
	Rollos      []ConsumoRolloRequest `json:"rollos" validate:"dive"`
	// ProcesoID pisa el proceso declarado por el primer producto.
	ProcesoID *string `json:"proceso_id" validate:"omitempty,uuid"`
	Encargado *string `json:"encargado"`
}

type AvanzarEtapaRequest struct {
	Etapa string `json:"etapa" validate:"required"`
	// Version habilita el chequeo optimista: si otro operador movió el lote
	// entre la lectura y este request, la transición se rechaza.
	Version int `json:"version" validate:"min=0"`
}

type AjustarConsumoRequest struct {
	Rollos []ConsumoRolloRequest `json:"rollos" validate:"required,dive"`
}

// DistribucionRequest: matriz color → (talle_id → unidades).
type DistribucionRequest struct {
	Tallas map[string]map[string]int `json:"tallas" validate:"required"`
}

type FinalizarLoteRequest struct {
	// Cantidades reales producidas por producto (producto_id → unidades).
	// Por defecto el total de la matriz de cada producto, editable por el
	// operador antes de confirmar.
	Cantidades map[string]int `json:"cantidades"`
	Version    int            `json:"version" validate:"min=0"`
}

type ConsumoRolloResponse struct {
	RolloID          string          `json:"rollo_id"`
	Color            string          `json:"color"`
	KgConsumido      decimal.Decimal `json:"kg_consumido"`
	MetrosConsumidos decimal.Decimal `json:"metros_consumidos"`
}

type LoteProductoResponse struct {
	ID               string                    `json:"id"`
	ProductoID       string                    `json:"producto_id"`
	ProductoNombre   string                    `json:"producto_nombre"`
	Orden            int                       `json:"orden"`
	Tallas           map[string]map[string]int `json:"tallas"`
	CantidadProducto int                       `json:"cantidad_producto"`
}

type LoteResponse struct {
	ID          string                 `json:"id"`
	Codigo      string                 `json:"codigo"`
	Etapas      []EtapaResponse        `json:"etapas"`
	EtapaActual int                    `json:"etapa_actual"`
	Estado      string                 `json:"estado"`
	Progreso    int                    `json:"progreso"`
	Version     int                    `json:"version"`
	Rollos      []ConsumoRolloResponse `json:"rollos"`
	Productos   []LoteProductoResponse `json:"productos"`
	Encargado   *string                `json:"encargado"`
	FechaInicio string                 `json:"fecha_inicio"`
	FechaFin    *string                `json:"fecha_fin"`
}

type LoteFilter struct {
	Estado string
	Page   int
	Limit  int
}

type LoteListResponse struct {
	Data  []LoteResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type AuditoriaResponse struct {
	ID        string  `json:"id"`
	LoteID    string  `json:"lote_id"`
	EtapaDe   string  `json:"etapa_de"`
	EtapaA    string  `json:"etapa_a"`
	IndiceDe  int     `json:"indice_de"`
	IndiceA   int     `json:"indice_a"`
	Encargado *string `json:"encargado"`
	Fecha     string  `json:"fecha"`
}
