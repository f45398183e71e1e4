package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"client-manager-api/internal/domain/client"
	"client-manager-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db         postgres.DB
	defPerPage int
	maxPerPage int
}

func NewRepository(db postgres.DB, defPerPage, maxPerPage int) client.Repository {
	return &Repository{
		db:         db,
		defPerPage: defPerPage,
		maxPerPage: maxPerPage,
	}
}

// scannable abstracts pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanClient(row scannable) (*Client, error) {
	c := new(Client)
	if err := row.Scan(
		&c.ID,
		&c.Nombre,
		&c.Email,
		&c.Telefono,
		&c.Estado,

		&c.FechaCreacion,
		&c.FechaActualizacion,
	); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) FetchClients(ctx context.Context, f client.ListFilter) (client.Clients, int64, error) {
	f = f.Normalize(r.defPerPage, r.maxPerPage)

	var total int64
	if err := r.db.QueryRow(ctx, CountClients, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	if f.PastEnd(total) {
		return client.Clients{}, total, nil
	}

	rows, err := r.db.Query(ctx, SelectClients, string(f.Status), f.PerPage, f.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("select clients: %w", err)
	}
	defer rows.Close()

	cs := make(Clients, 0, f.PerPage)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		cs = append(cs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("select clients: %w", err)
	}

	return fromDBModels(cs), total, nil
}

func (r *Repository) FetchClientByID(ctx context.Context, id client.ID) (*client.Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, SelectClientByID, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %d: %w", id, client.ErrNotFound)
		}
		return nil, fmt.Errorf("select client %d: %w", id, err)
	}

	return fromDBModel(c), nil
}

func (r *Repository) FetchClientByEmail(ctx context.Context, email string) (*client.Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, SelectClientByEmail, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select client by email: %w", err)
	}

	return fromDBModel(c), nil
}

func (r *Repository) CreateClient(ctx context.Context, d client.Draft) (*client.Client, error) {
	c, err := scanClient(r.db.QueryRow(
		ctx,
		InsertClient,
		d.Name, d.Email, d.Phone, string(d.Status),
	))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, fmt.Errorf("insert client: %w", client.ErrEmailConflict)
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}

	return fromDBModel(c), nil
}

func (r *Repository) UpdateClient(ctx context.Context, id client.ID, p client.Patch) (*client.Client, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	c, err := scanClient(r.db.QueryRow(
		ctx,
		UpdateClientByID,
		p.Name, p.Email, p.PhoneSet, p.Phone, status, int64(id),
	))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, fmt.Errorf("update client %d: %w", id, client.ErrEmailConflict)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %d: %w", id, client.ErrNotFound)
		}
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}

	return fromDBModel(c), nil
}

func (r *Repository) DeleteClient(ctx context.Context, id client.ID) error {
	tag, err := r.db.Exec(ctx, DeleteClientByID, int64(id))
	if err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %d: %w", id, client.ErrNotFound)
	}

	return nil
}
