package ports

import (
	"context"

	"client-manager-api/internal/domain/client"
)

// ClientService is the core of the API. Every error it returns is an
// *apperr.Error.
type ClientService interface {
	FindClientByID(ctx context.Context, id client.ID) (*client.Client, error)
	FindClients(ctx context.Context, f client.ListFilter) (client.Clients, int64, error)
	CreateClient(ctx context.Context, raw map[string]any) (*client.Client, error)
	CreateClients(ctx context.Context, raws []map[string]any) []client.CreateResult
	UpdateClient(ctx context.Context, id client.ID, raw map[string]any) (*client.Client, error)
	DeleteClient(ctx context.Context, id client.ID) error
}
