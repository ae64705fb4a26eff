package dto

type EtapaRequest struct {
	Nombre        string `json:"nombre" validate:"required"`
	Orden         int    `json:"orden" validate:"min=0"`
	RequiereInput bool   `json:"requiere_input"`
}

type CrearProcesoRequest struct {
	Nombre string         `json:"nombre" validate:"required"`
	Etapas []EtapaRequest `json:"etapas" validate:"required,min=1,dive"`
}

type ReemplazarEtapasRequest struct {
	Etapas []EtapaRequest `json:"etapas" validate:"required,min=1,dive"`
}

type EtapaResponse struct {
	Nombre        string `json:"nombre"`
	Orden         int    `json:"orden"`
	RequiereInput bool   `json:"requiere_input"`
}

type ProcesoResponse struct {
	ID     string          `json:"id"`
	Nombre string          `json:"nombre"`
	Etapas []EtapaResponse `json:"etapas"`
}
