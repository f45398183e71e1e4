package client

import (
	"time"
)

type (
	Client struct {
		ID                 int64     `json:"id"`
		Nombre             string    `json:"nombre"`
		Email              string    `json:"email"`
		Telefono           *string   `json:"telefono"`
		Estado             string    `json:"estado"`
		FechaCreacion      time.Time `json:"fecha_creacion"`
		FechaActualizacion time.Time `json:"fecha_actualizacion"`
	}
	Clients []Client

	// Envelope wraps every response of the API.
	Envelope struct {
		Success    bool        `json:"success"`
		Message    string      `json:"message,omitempty"`
		Data       any         `json:"data,omitempty"`
		Pagination *Pagination `json:"pagination,omitempty"`
		Error      *Error      `json:"error,omitempty"`
	}
	Pagination struct {
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
		Total   int64 `json:"total"`
		Pages   int64 `json:"pages"`
	}
	Error struct {
		Type    string              `json:"type"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details,omitempty"`
	}

	// BatchItem is the outcome of one element of a batch create.
	BatchItem struct {
		Index   int     `json:"index"`
		Success bool    `json:"success"`
		Data    *Client `json:"data,omitempty"`
		Error   *Error  `json:"error,omitempty"`
	}
)
