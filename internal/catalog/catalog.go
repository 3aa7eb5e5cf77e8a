// Package catalog holds the record lifecycle rules that sit between the
// request handlers and the stores: a record is only deleted once nothing
// references it, foreign references are resolved before a write, and genres
// and books are created at most once per identity key.
//
// The stores have no foreign-key support, so every rule here is enforced by
// reading before writing. Independent reads are issued concurrently.
package catalog

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/aoideee/locallibrary/internal/data"
)

// Service applies the integrity rules on top of a set of stores.
type Service struct {
	models data.Models
}

// New returns a Service using models for persistence.
func New(models data.Models) *Service {
	return &Service{models: models}
}

// Models exposes the underlying stores for plain reads.
func (s *Service) Models() data.Models {
	return s.models
}

// Deletion is the outcome of a guarded delete. When Dependents is non-empty
// the target was left in place and Deleted is false.
type Deletion[T any, D any] struct {
	Target     *T
	Dependents []*D
	Deleted    bool
}

// Blocked reports whether dependents prevented the delete.
func (d Deletion[T, D]) Blocked() bool {
	return len(d.Dependents) > 0
}

// fanOut runs fns concurrently and waits for all of them. The first error is
// returned and cancels the context handed to the others.
func fanOut(ctx context.Context, fns ...func(context.Context) error) error {
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, fn := range fns {
		p.Go(fn)
	}
	return p.Wait()
}

// guardedDelete loads the target and its dependents together, then deletes
// the target only if there are no dependents.
func guardedDelete[T any, D any](
	ctx context.Context,
	get func(context.Context) (*T, error),
	dependents func(context.Context) ([]*D, error),
	del func(context.Context) error,
) (Deletion[T, D], error) {
	var res Deletion[T, D]

	err := fanOut(ctx,
		func(ctx context.Context) (err error) {
			res.Target, err = get(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			res.Dependents, err = dependents(ctx)
			return err
		},
	)
	if err != nil {
		return res, err
	}
	if res.Blocked() {
		return res, nil
	}

	if err := del(ctx); err != nil {
		return res, err
	}
	res.Deleted = true
	return res, nil
}

// Summary is the set of counts shown on the home page.
type Summary struct {
	Books              int
	BookInstances      int
	AvailableInstances int
	Authors            int
	Genres             int
}

// Summary counts every collection concurrently.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := fanOut(ctx,
		func(ctx context.Context) (err error) {
			sum.Books, err = s.models.Books.Count(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			sum.BookInstances, err = s.models.BookInstances.Count(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			sum.AvailableInstances, err = s.models.BookInstances.CountByStatus(ctx, data.StatusAvailable)
			return err
		},
		func(ctx context.Context) (err error) {
			sum.Authors, err = s.models.Authors.Count(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			sum.Genres, err = s.models.Genres.Count(ctx)
			return err
		},
	)
	return sum, err
}
