// Package cache keeps recently read clients in an in-process ristretto
// cache in front of the durable repository.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"client-manager-api/internal/domain/client"
)

type Repository struct {
	repo  client.Repository
	cache *ristretto.Cache[int64, client.Client]
	ttl   time.Duration
	log   *zap.Logger

	// gen is bumped by every write. A lookup only caches its row when no
	// write happened while it was reading from the database.
	mu  sync.Mutex
	gen uint64
}

// New wraps repo with a read-through cache for point lookups. Listings and
// email probes always go to the underlying repository.
func New(repo client.Repository, maxItems int64, ttl time.Duration, logger *zap.Logger) (*Repository, error) {
	c, err := ristretto.NewCache(&ristretto.Config[int64, client.Client]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create client cache: %w", err)
	}

	return &Repository{
		repo:  repo,
		cache: c,
		ttl:   ttl,
		log:   logger,
	}, nil
}

func (r *Repository) FetchClientByID(ctx context.Context, id client.ID) (*client.Client, error) {
	if c, ok := r.cache.Get(int64(id)); ok {
		return &c, nil
	}

	gen := r.generation()
	c, err := r.repo.FetchClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.storeIfUnchanged(gen, c)

	return c, nil
}

// Uncached returns the repository behind the cache.
func (r *Repository) Uncached() client.Repository { return r.repo }

func (r *Repository) FetchClientByEmail(ctx context.Context, email string) (*client.Client, error) {
	return r.repo.FetchClientByEmail(ctx, email)
}

func (r *Repository) FetchClients(ctx context.Context, f client.ListFilter) (client.Clients, int64, error) {
	return r.repo.FetchClients(ctx, f)
}

func (r *Repository) CreateClient(ctx context.Context, d client.Draft) (*client.Client, error) {
	c, err := r.repo.CreateClient(ctx, d)
	if err != nil {
		return nil, err
	}
	r.replace(c.ID, c)

	return c, nil
}

func (r *Repository) UpdateClient(ctx context.Context, id client.ID, p client.Patch) (*client.Client, error) {
	r.replace(id, nil)

	c, err := r.repo.UpdateClient(ctx, id, p)
	if err != nil {
		r.replace(id, nil)
		return nil, err
	}
	r.replace(id, c)

	return c, nil
}

func (r *Repository) DeleteClient(ctx context.Context, id client.ID) error {
	r.replace(id, nil)
	err := r.repo.DeleteClient(ctx, id)
	r.replace(id, nil)

	return err
}

func (r *Repository) Close() { r.cache.Close() }

func (r *Repository) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// replace bumps the generation, drops id and caches c when it is not nil.
// Del and Set share ristretto's write buffer, so under mu they apply in
// call order.
func (r *Repository) replace(id client.ID, c *client.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	r.cache.Del(int64(id))
	if c != nil {
		r.set(c)
	}
}

func (r *Repository) storeIfUnchanged(gen uint64, c *client.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		return
	}
	r.set(c)
}

func (r *Repository) set(c *client.Client) {
	if c == nil {
		return
	}
	if !r.cache.SetWithTTL(int64(c.ID), *c, 1, r.ttl) {
		r.log.Debug("client cache set dropped", zap.Int64("client_id", int64(c.ID)))
	}
}
