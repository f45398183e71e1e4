package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"client-manager-api/internal/application/apperr"
	"client-manager-api/internal/application/ports"
	"client-manager-api/internal/domain/client"
	"client-manager-api/internal/infrastructure/mq"
	dto "client-manager-api/internal/interface/api/rest/dto/client"
	"client-manager-api/internal/interface/api/rest/validator"
)

type ClientService struct {
	clientRepository client.Repository
	validator        *validator.ClientValidator
	audit            ports.AuditPublisher
	mCounter         *prometheus.CounterVec
}

func NewClientService(
	clientRepository client.Repository,
	v *validator.ClientValidator,
	audit ports.AuditPublisher,
	mCounter *prometheus.CounterVec,
) ports.ClientService {
	return &ClientService{
		clientRepository: clientRepository,
		validator:        v,
		audit:            audit,
		mCounter:         mCounter,
	}
}

// uncacher is implemented by repositories that serve reads from a cache.
type uncacher interface {
	Uncached() client.Repository
}

// source returns the repository that reads the stored row, bypassing any
// cache.
func (cs *ClientService) source() client.Repository {
	if u, ok := cs.clientRepository.(uncacher); ok {
		return u.Uncached()
	}
	return cs.clientRepository
}

func notFound(id client.ID) *apperr.Error {
	return apperr.NotFound(fmt.Sprintf("No se encontró cliente con ID %d", id))
}

// classify translates a repository failure for the client with the given id.
func classify(id client.ID, err error) *apperr.Error {
	ae := apperr.Classify(err)
	if ae.Kind == apperr.KindNotFound && id > 0 {
		nf := notFound(id)
		nf.Err = err
		return nf
	}
	return ae
}

func (cs *ClientService) FindClientByID(ctx context.Context, id client.ID) (*client.Client, error) {
	c, err := cs.clientRepository.FetchClientByID(ctx, id)
	if err != nil {
		return nil, classify(id, err)
	}

	return c, nil
}

func (cs *ClientService) FindClients(ctx context.Context, f client.ListFilter) (client.Clients, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.BadRequest(validator.MsgBadStatus)
	}

	cls, total, err := cs.clientRepository.FetchClients(ctx, f)
	if err != nil {
		return nil, 0, apperr.Classify(err)
	}

	return cls, total, nil
}

func (cs *ClientService) CreateClient(ctx context.Context, raw map[string]any) (*client.Client, error) {
	d, errs := cs.validator.ValidateClient(raw)
	if errs != nil {
		ae := apperr.Validation(errs)
		cs.record(mq.OpCreate, 0, ae, nil)
		return nil, ae
	}

	c, err := cs.insert(ctx, d)
	cs.record(mq.OpCreate, idOf(c), err, c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// CreateClients stores every valid item of a batch independently. One
// failing item never prevents its siblings from being created, and items
// are persisted in input order.
func (cs *ClientService) CreateClients(ctx context.Context, raws []map[string]any) []client.CreateResult {
	items := cs.validator.ValidateBatch(raws)
	results := make([]client.CreateResult, len(items))

	for i, it := range items {
		results[i] = client.CreateResult{Index: it.Index}
		if it.Violations != nil {
			ae := apperr.Validation(it.Violations)
			cs.record(mq.OpCreate, 0, ae, nil)
			results[i].Err = ae
			continue
		}

		c, err := cs.insert(ctx, it.Draft)
		cs.record(mq.OpCreate, idOf(c), err, c)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Client = c
	}

	return results
}

func (cs *ClientService) insert(ctx context.Context, d client.Draft) (*client.Client, *apperr.Error) {
	existing, err := cs.clientRepository.FetchClientByEmail(ctx, d.Email)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	if existing != nil {
		return nil, apperr.Conflict(client.ErrEmailConflict)
	}

	// a concurrent insert can still win the race; the unique constraint
	// reports it as ErrEmailConflict
	c, err := cs.clientRepository.CreateClient(ctx, d)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	return c, nil
}

// UpdateClient applies the supplied fields to an existing client. A patch
// that changes nothing returns the stored client without touching
// fecha_actualizacion.
func (cs *ClientService) UpdateClient(ctx context.Context, id client.ID, raw map[string]any) (*client.Client, error) {
	current, err := cs.source().FetchClientByID(ctx, id)
	if err != nil {
		ae := classify(id, err)
		cs.record(mq.OpUpdate, id, ae, nil)
		return nil, ae
	}

	p, errs := cs.validator.ValidateClientPatch(raw)
	if errs != nil {
		ae := apperr.Validation(errs)
		cs.record(mq.OpUpdate, id, ae, nil)
		return nil, ae
	}

	if !p.Changes(*current) {
		return current, nil
	}

	if p.Email != nil && *p.Email != current.Email {
		other, err := cs.clientRepository.FetchClientByEmail(ctx, *p.Email)
		if err != nil {
			ae := apperr.Classify(err)
			cs.record(mq.OpUpdate, id, ae, nil)
			return nil, ae
		}
		if other != nil && other.ID != id {
			ae := apperr.Conflict(client.ErrEmailConflict)
			cs.record(mq.OpUpdate, id, ae, nil)
			return nil, ae
		}
	}

	c, err := cs.clientRepository.UpdateClient(ctx, id, p)
	if err != nil {
		ae := classify(id, err)
		cs.record(mq.OpUpdate, id, ae, nil)
		return nil, ae
	}
	cs.record(mq.OpUpdate, id, nil, c)

	return c, nil
}

func (cs *ClientService) DeleteClient(ctx context.Context, id client.ID) error {
	if err := cs.clientRepository.DeleteClient(ctx, id); err != nil {
		ae := classify(id, err)
		cs.record(mq.OpDelete, id, ae, nil)
		return ae
	}
	cs.record(mq.OpDelete, id, nil, nil)

	return nil
}

// record publishes the audit event of a mutation and bumps its counter.
func (cs *ClientService) record(op string, id client.ID, ae *apperr.Error, c *client.Client) {
	outcome := mq.OutcomeSuccess
	if ae != nil {
		outcome = string(ae.Kind)
	}

	var payload *dto.Client
	if c != nil {
		p := dto.ToResponseClient(*c)
		payload = &p
	}
	if cs.audit != nil {
		cs.audit.Publish(mq.NewEvent(op, int64(id), outcome, payload))
	}

	if cs.mCounter != nil {
		cs.mCounter.WithLabelValues(op + "_" + outcome).Inc()
	}
}

func idOf(c *client.Client) client.ID {
	if c == nil {
		return 0
	}
	return c.ID
}
