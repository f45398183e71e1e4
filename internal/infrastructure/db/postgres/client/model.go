package client

import (
	"time"
)

type (
	Client struct {
		ID       int64
		Nombre   string
		Email    string
		Telefono *string
		Estado   string

		FechaCreacion      time.Time
		FechaActualizacion time.Time
	}
	Clients []*Client
)
