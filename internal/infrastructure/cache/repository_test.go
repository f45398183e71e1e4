package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"client-manager-api/internal/domain/client"
)

type FakeRepository struct {
	FetchClientByIDFunc func(ctx context.Context, id client.ID) (*client.Client, error)
	UpdateClientFunc    func(ctx context.Context, id client.ID, p client.Patch) (*client.Client, error)
	DeleteClientFunc    func(ctx context.Context, id client.ID) error
	CreateClientFunc    func(ctx context.Context, d client.Draft) (*client.Client, error)
}

func (f *FakeRepository) FetchClientByID(ctx context.Context, id client.ID) (*client.Client, error) {
	if f.FetchClientByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchClientByIDFunc(ctx, id)
}
func (f *FakeRepository) FetchClientByEmail(ctx context.Context, email string) (*client.Client, error) {
	return nil, errors.New("not used")
}
func (f *FakeRepository) FetchClients(ctx context.Context, fl client.ListFilter) (client.Clients, int64, error) {
	return nil, 0, errors.New("not used")
}
func (f *FakeRepository) CreateClient(ctx context.Context, d client.Draft) (*client.Client, error) {
	if f.CreateClientFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateClientFunc(ctx, d)
}
func (f *FakeRepository) UpdateClient(ctx context.Context, id client.ID, p client.Patch) (*client.Client, error) {
	if f.UpdateClientFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UpdateClientFunc(ctx, id, p)
}
func (f *FakeRepository) DeleteClient(ctx context.Context, id client.ID) error {
	if f.DeleteClientFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteClientFunc(ctx, id)
}

func newCached(t *testing.T, fake *FakeRepository) *Repository {
	t.Helper()
	r, err := New(fake, 100, time.Minute, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestRepository_ReadThrough(t *testing.T) {
	calls := 0
	fake := &FakeRepository{
		FetchClientByIDFunc: func(ctx context.Context, id client.ID) (*client.Client, error) {
			calls++
			return &client.Client{ID: id, Name: "Ana"}, nil
		},
	}
	r := newCached(t, fake)

	c, err := r.FetchClientByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)
	r.cache.Wait()

	c, err = r.FetchClientByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, 1, calls)
}

func TestRepository_NotFoundIsNotCached(t *testing.T) {
	calls := 0
	fake := &FakeRepository{
		FetchClientByIDFunc: func(ctx context.Context, id client.ID) (*client.Client, error) {
			calls++
			return nil, client.ErrNotFound
		},
	}
	r := newCached(t, fake)

	_, err := r.FetchClientByID(context.Background(), 9)
	require.ErrorIs(t, err, client.ErrNotFound)
	r.cache.Wait()
	_, err = r.FetchClientByID(context.Background(), 9)
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, 2, calls)
}

func TestRepository_UpdateRefreshesEntry(t *testing.T) {
	fake := &FakeRepository{
		CreateClientFunc: func(ctx context.Context, d client.Draft) (*client.Client, error) {
			return &client.Client{ID: 2, Name: d.Name, Status: client.StatusActive}, nil
		},
		UpdateClientFunc: func(ctx context.Context, id client.ID, p client.Patch) (*client.Client, error) {
			return &client.Client{ID: id, Name: "Ana", Status: *p.Status}, nil
		},
		FetchClientByIDFunc: func(ctx context.Context, id client.ID) (*client.Client, error) {
			t.Fatal("lookup should be served from cache")
			return nil, nil
		},
	}
	r := newCached(t, fake)

	_, err := r.CreateClient(context.Background(), client.Draft{Name: "Ana"})
	require.NoError(t, err)
	r.cache.Wait()

	inactive := client.StatusInactive
	_, err = r.UpdateClient(context.Background(), 2, client.Patch{Status: &inactive})
	require.NoError(t, err)
	r.cache.Wait()

	c, err := r.FetchClientByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, client.StatusInactive, c.Status)
}

func TestRepository_FailedUpdateEvicts(t *testing.T) {
	lookups := 0
	fake := &FakeRepository{
		FetchClientByIDFunc: func(ctx context.Context, id client.ID) (*client.Client, error) {
			lookups++
			return &client.Client{ID: id, Name: "Ana"}, nil
		},
		UpdateClientFunc: func(ctx context.Context, id client.ID, p client.Patch) (*client.Client, error) {
			return nil, client.ErrEmailConflict
		},
	}
	r := newCached(t, fake)

	_, err := r.FetchClientByID(context.Background(), 3)
	require.NoError(t, err)
	r.cache.Wait()

	_, err = r.UpdateClient(context.Background(), 3, client.Patch{})
	require.ErrorIs(t, err, client.ErrEmailConflict)
	r.cache.Wait()

	_, err = r.FetchClientByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, lookups)
}

func TestRepository_DeleteEvicts(t *testing.T) {
	deleted := false
	fake := &FakeRepository{
		FetchClientByIDFunc: func(ctx context.Context, id client.ID) (*client.Client, error) {
			if deleted {
				return nil, client.ErrNotFound
			}
			return &client.Client{ID: id}, nil
		},
		DeleteClientFunc: func(ctx context.Context, id client.ID) error {
			if deleted {
				return client.ErrNotFound
			}
			deleted = true
			return nil
		},
	}
	r := newCached(t, fake)

	_, err := r.FetchClientByID(context.Background(), 4)
	require.NoError(t, err)
	r.cache.Wait()

	require.NoError(t, r.DeleteClient(context.Background(), 4))
	require.ErrorIs(t, r.DeleteClient(context.Background(), 4), client.ErrNotFound)

	_, err = r.FetchClientByID(context.Background(), 4)
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestRepository_SlowReadDoesNotOutliveDelete(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fake := &FakeRepository{
		FetchClientByIDFunc: func(ctx context.Context, id client.ID) (*client.Client, error) {
			close(entered)
			<-release
			return &client.Client{ID: id, Name: "Ana"}, nil
		},
		DeleteClientFunc: func(ctx context.Context, id client.ID) error {
			return nil
		},
	}
	r := newCached(t, fake)

	done := make(chan error)
	go func() {
		_, err := r.FetchClientByID(context.Background(), 7)
		done <- err
	}()

	<-entered
	require.NoError(t, r.DeleteClient(context.Background(), 7))
	close(release)
	require.NoError(t, <-done)
	r.cache.Wait()

	_, ok := r.cache.Get(7)
	assert.False(t, ok)
}

func TestRepository_SlowReadDoesNotOutliveUpdate(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fake := &FakeRepository{
		FetchClientByIDFunc: func(ctx context.Context, id client.ID) (*client.Client, error) {
			close(entered)
			<-release
			return &client.Client{ID: id, Name: "v1"}, nil
		},
		UpdateClientFunc: func(ctx context.Context, id client.ID, p client.Patch) (*client.Client, error) {
			return &client.Client{ID: id, Name: *p.Name}, nil
		},
	}
	r := newCached(t, fake)

	done := make(chan error)
	go func() {
		_, err := r.FetchClientByID(context.Background(), 8)
		done <- err
	}()

	<-entered
	v2 := "v2"
	_, err := r.UpdateClient(context.Background(), 8, client.Patch{Name: &v2})
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-done)
	r.cache.Wait()

	c, ok := r.cache.Get(8)
	require.True(t, ok)
	assert.Equal(t, "v2", c.Name)
}

func TestRepository_Uncached(t *testing.T) {
	fake := &FakeRepository{}
	r := newCached(t, fake)

	assert.Same(t, fake, r.Uncached())
}
