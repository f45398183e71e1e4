package client

import (
	"client-manager-api/internal/application/apperr"
	"client-manager-api/internal/domain/client"
)

func ToResponseClient(cDomain client.Client) Client {
	var c = Client{
		ID:                 int64(cDomain.ID),
		Nombre:             cDomain.Name,
		Email:              cDomain.Email,
		Telefono:           cDomain.Phone,
		Estado:             string(cDomain.Status),
		FechaCreacion:      cDomain.CreatedAt,
		FechaActualizacion: cDomain.UpdatedAt,
	}

	return c
}

func ToResponseClients(csDomain client.Clients) Clients {
	cs := make(Clients, len(csDomain))
	for idx, c := range csDomain {
		cs[idx] = ToResponseClient(*c)
	}

	return cs
}

func ToResponseError(ae *apperr.Error) *Error {
	return &Error{
		Type:    string(ae.Kind),
		Message: ae.Message,
		Details: ae.Details,
	}
}

func ToResponseBatch(results []client.CreateResult) ([]BatchItem, int) {
	items := make([]BatchItem, len(results))
	created := 0
	for idx, r := range results {
		item := BatchItem{Index: r.Index}
		if r.Err != nil {
			item.Error = ToResponseError(apperr.Classify(r.Err))
		} else if r.Client != nil {
			c := ToResponseClient(*r.Client)
			item.Data = &c
			item.Success = true
			created++
		}
		items[idx] = item
	}

	return items, created
}

func ErrorEnvelope(ae *apperr.Error) Envelope {
	return Envelope{
		Success: false,
		Error:   ToResponseError(ae),
	}
}
