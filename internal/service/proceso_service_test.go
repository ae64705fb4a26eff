package service

import (
	"context"
	"testing"

	"fabricaops/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearProcesoNormalizaOrden(t *testing.T) {
	svc := NewProcesoService(newStubProcesoRepo())

	// Ordenes 5, 2, 9 — solo definen secuencia relativa.
	resp, err := svc.CrearProceso(context.Background(), dto.CrearProcesoRequest{
		Nombre: "Confección remeras",
		Etapas: []dto.EtapaRequest{
			{Nombre: "taller", Orden: 5},
			{Nombre: "corte", Orden: 2},
			{Nombre: "terminado", Orden: 9, RequiereInput: true},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Etapas, 3)
	assert.Equal(t, "corte", resp.Etapas[0].Nombre)
	assert.Equal(t, "taller", resp.Etapas[1].Nombre)
	assert.Equal(t, "terminado", resp.Etapas[2].Nombre)
	for i, e := range resp.Etapas {
		assert.Equal(t, i, e.Orden, "orden contiguo 0..n-1")
	}
	assert.True(t, resp.Etapas[2].RequiereInput)
}

func TestCrearProcesoSinEtapas(t *testing.T) {
	svc := NewProcesoService(newStubProcesoRepo())

	_, err := svc.CrearProceso(context.Background(), dto.CrearProcesoRequest{
		Nombre: "Vacio",
		Etapas: []dto.EtapaRequest{},
	})
	var vErr *ValidacionError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "etapas", vErr.Campo)
}

func TestCrearProcesoEtapaSinNombre(t *testing.T) {
	svc := NewProcesoService(newStubProcesoRepo())

	_, err := svc.CrearProceso(context.Background(), dto.CrearProcesoRequest{
		Nombre: "Incompleto",
		Etapas: []dto.EtapaRequest{
			{Nombre: "corte", Orden: 0},
			{Nombre: "", Orden: 1},
		},
	})
	var vErr *ValidacionError
	require.ErrorAs(t, err, &vErr)
}

func TestReemplazarEtapasFullReplace(t *testing.T) {
	repo := newStubProcesoRepo()
	svc := NewProcesoService(repo)
	ctx := context.Background()

	creado, err := svc.CrearProceso(ctx, dto.CrearProcesoRequest{
		Nombre: "Base",
		Etapas: []dto.EtapaRequest{
			{Nombre: "corte", Orden: 0},
			{Nombre: "taller", Orden: 1},
		},
	})
	require.NoError(t, err)
	id := uuid.MustParse(creado.ID)

	resp, err := svc.ReemplazarEtapas(ctx, id, dto.ReemplazarEtapasRequest{
		Etapas: []dto.EtapaRequest{
			{Nombre: "planificado", Orden: 0},
			{Nombre: "corte", Orden: 1},
			{Nombre: "bordado", Orden: 2},
			{Nombre: "terminado", Orden: 3, RequiereInput: true},
		},
	})
	require.NoError(t, err)

	// Las etapas viejas no sobreviven: reemplazo completo.
	require.Len(t, resp.Etapas, 4)
	assert.Equal(t, "planificado", resp.Etapas[0].Nombre)
	assert.Equal(t, "bordado", resp.Etapas[2].Nombre)
}

func TestReemplazarEtapasProcesoInexistente(t *testing.T) {
	svc := NewProcesoService(newStubProcesoRepo())

	_, err := svc.ReemplazarEtapas(context.Background(), uuid.New(), dto.ReemplazarEtapasRequest{
		Etapas: []dto.EtapaRequest{{Nombre: "corte", Orden: 0}},
	})
	require.Error(t, err)
}
