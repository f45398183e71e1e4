package client

import (
	domain "client-manager-api/internal/domain/client"
)

func fromDBModel(model *Client) *domain.Client {
	var c = &domain.Client{
		ID:     domain.ID(model.ID),
		Name:   model.Nombre,
		Email:  model.Email,
		Phone:  model.Telefono,
		Status: domain.Status(model.Estado),

		CreatedAt: model.FechaCreacion,
		UpdatedAt: model.FechaActualizacion,
	}

	return c
}

func fromDBModels(models Clients) domain.Clients {
	cs := make(domain.Clients, len(models))
	for idx, c := range models {
		cs[idx] = fromDBModel(c)
	}

	return cs
}
