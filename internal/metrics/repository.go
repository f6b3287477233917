package metrics

import (
	"context"

	"github.com/goliatone/go-kaizen/kaizen"
)

var _ kaizen.Repository = (*InstrumentedRepository)(nil)

// InstrumentedRepository counts every call made to the wrapped store.
type InstrumentedRepository struct {
	base    kaizen.Repository
	metrics *Metrics
}

// InstrumentRepository wraps base. It sits below the cache so only real
// store traffic is counted.
func InstrumentRepository(base kaizen.Repository, m *Metrics) *InstrumentedRepository {
	return &InstrumentedRepository{base: base, metrics: m}
}

func (r *InstrumentedRepository) Create(ctx context.Context, record kaizen.Kaizen) (kaizen.Kaizen, error) {
	out, err := r.base.Create(ctx, record)
	r.metrics.ObserveStore("create", err)
	return out, err
}

func (r *InstrumentedRepository) List(ctx context.Context) ([]kaizen.Kaizen, error) {
	out, err := r.base.List(ctx)
	r.metrics.ObserveStore("list", err)
	return out, err
}

func (r *InstrumentedRepository) GetByID(ctx context.Context, id string) (kaizen.Kaizen, error) {
	out, err := r.base.GetByID(ctx, id)
	r.metrics.ObserveStore("get", ignoreNotFound(err))
	return out, err
}

func (r *InstrumentedRepository) Update(ctx context.Context, id string, patch kaizen.Patch) (kaizen.Kaizen, error) {
	out, err := r.base.Update(ctx, id, patch)
	r.metrics.ObserveStore("update", ignoreNotFound(err))
	return out, err
}

func ignoreNotFound(err error) error {
	if kaizen.IsNotFound(err) {
		return nil
	}
	return err
}
