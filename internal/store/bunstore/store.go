// Package bunstore implements kaizen.Repository on top of bun, for sqlite and
// postgres databases.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-kaizen/kaizen"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ kaizen.Repository = (*Store)(nil)

// OrderByCreation lists records in insertion order.
var OrderByCreation repository.SelectCriteria = func(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("created_at ASC", "id ASC")
}

// TimePrecision is the finest timestamp resolution every supported dialect
// keeps. Postgres timestamptz stops at microseconds.
const TimePrecision = time.Microsecond

// Store persists records in a single bun table.
// Queries are composed from go-repository-bun criteria.
type Store struct {
	db       *bun.DB
	now      func() time.Time
	criteria []repository.SelectCriteria
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithListCriteria replaces the criteria applied to List queries.
func WithListCriteria(criteria ...repository.SelectCriteria) Option {
	return func(s *Store) {
		s.criteria = criteria
	}
}

// New creates a Store over db.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		now:      time.Now,
		criteria: []repository.SelectCriteria{OrderByCreation},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the records table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*kaizen.Kaizen)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "create kaizens table")
	}
	return nil
}

// Create inserts record with a fresh id and both timestamps set, then
// returns the row as stored.
func (s *Store) Create(ctx context.Context, record kaizen.Kaizen) (kaizen.Kaizen, error) {
	record = record.Clone()
	record.ID = uuid.NewString()
	record.Stamp(s.now().UTC().Truncate(TimePrecision))

	var created kaizen.Kaizen
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&record).Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "insert kaizen")
		}
		stored, err := s.get(ctx, tx, record.ID)
		if err != nil {
			return err
		}
		created = stored
		return nil
	})
	if err != nil {
		return kaizen.Kaizen{}, err
	}
	return created, nil
}

// List returns every record.
func (s *Store) List(ctx context.Context) ([]kaizen.Kaizen, error) {
	records := []kaizen.Kaizen{}
	q := applySelect(s.db.NewSelect().Model(&records), s.criteria...)
	if err := q.Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "list kaizens")
	}
	return records, nil
}

// GetByID returns the record with id, or a not-found error.
func (s *Store) GetByID(ctx context.Context, id string) (kaizen.Kaizen, error) {
	return s.get(ctx, s.db, id)
}

// Update applies patch and returns the record as stored afterwards.
func (s *Store) Update(ctx context.Context, id string, patch kaizen.Patch) (kaizen.Kaizen, error) {
	var updated kaizen.Kaizen
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if !patch.IsEmpty() {
			q := applyUpdate(tx.NewUpdate().Model((*kaizen.Kaizen)(nil)), UpdateByID(id), SetPatch(patch))
			res, err := q.Exec(ctx)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "update kaizen")
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return kaizen.NotFound(id)
			}
		}

		record, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		return kaizen.Kaizen{}, err
	}
	return updated, nil
}

func (s *Store) get(ctx context.Context, db bun.IDB, id string) (kaizen.Kaizen, error) {
	var record kaizen.Kaizen
	err := applySelect(db.NewSelect().Model(&record), SelectByID(id)).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return kaizen.Kaizen{}, kaizen.NotFound(id)
	}
	if err != nil {
		return kaizen.Kaizen{}, goerrors.Wrap(err, goerrors.CategoryInternal, "get kaizen")
	}
	return record, nil
}

// SelectByID matches the row with id.
func SelectByID(id string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	}
}

// UpdateByID restricts an update to the row with id.
func UpdateByID(id string) repository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Where("id = ?", id)
	}
}

// SetPatch sets one column per non-nil field of p.
func SetPatch(p kaizen.Patch) repository.UpdateCriteria {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		applySet(q, p)
		return q
	}
}

func applySelect(q *bun.SelectQuery, criteria ...repository.SelectCriteria) *bun.SelectQuery {
	for _, c := range criteria {
		q = c(q)
	}
	return q
}

func applyUpdate(q *bun.UpdateQuery, criteria ...repository.UpdateCriteria) *bun.UpdateQuery {
	for _, c := range criteria {
		q = c(q)
	}
	return q
}

func applySet(q *bun.UpdateQuery, p kaizen.Patch) {
	str := func(column string, v *string) {
		if v != nil {
			q.Set("? = ?", bun.Ident(column), *v)
		}
	}
	str("status", p.Status)
	str("impact", p.Impact)
	str("benefit_score", p.BenefitScore)
	str("team_members", p.TeamMembers)
	str("implementation_cost", p.ImplementationCost)
	str("annual_savings", p.AnnualSavings)
	str("implemented_action", p.ImplementedAction)
	str("other", p.Other)
	str("updated_image", p.UpdatedImage)
	if p.Benefits != nil {
		benefits := *p.Benefits
		if benefits == nil {
			benefits = kaizen.Benefits{}
		}
		q.Set("? = ?", bun.Ident("benefits"), benefitsJSON(benefits))
	}
	if p.UpdatedAt != nil {
		q.Set("? = ?", bun.Ident("updated_at"), p.UpdatedAt.UTC())
	}
}
