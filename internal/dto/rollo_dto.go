package dto

import "github.com/shopspring/decimal"

type CrearRolloRequest struct {
	Codigo          string          `json:"codigo" validate:"required"`
	TipoTela        string          `json:"tipo_tela" validate:"required"`
	Color           string          `json:"color" validate:"required"`
	MetrosIniciales decimal.Decimal `json:"metros_iniciales" validate:"min=0"`
	PesoInicial     decimal.Decimal `json:"peso_inicial" validate:"min=0"`
	Encargado       *string         `json:"encargado"`
}

// RolloFilter llega por query params; Estado filtra por el estado derivado.
type RolloFilter struct {
	Estado   string
	TipoTela string
}

// DisponiblesFilter acota los rollos candidatos para el armado de un lote.
type DisponiblesFilter struct {
	TipoTela  string
	MinMetros decimal.Decimal
}

type RolloResponse struct {
	ID              string          `json:"id"`
	Codigo          string          `json:"codigo"`
	TipoTela        string          `json:"tipo_tela"`
	Color           string          `json:"color"`
	MetrosIniciales decimal.Decimal `json:"metros_iniciales"`
	MetrosRestantes decimal.Decimal `json:"metros_restantes"`
	PesoInicial     decimal.Decimal `json:"peso_inicial"`
	PesoRestante    decimal.Decimal `json:"peso_restante"`
	Estado          string          `json:"estado"`
	Encargado       *string         `json:"encargado"`
}
