package client

import (
	"context"
)

type Repository interface {
	FetchClientByID(ctx context.Context, id ID) (*Client, error)
	FetchClientByEmail(ctx context.Context, email string) (*Client, error)
	FetchClients(ctx context.Context, f ListFilter) (Clients, int64, error)
	CreateClient(ctx context.Context, d Draft) (*Client, error)
	UpdateClient(ctx context.Context, id ID, p Patch) (*Client, error)
	DeleteClient(ctx context.Context, id ID) error
}
