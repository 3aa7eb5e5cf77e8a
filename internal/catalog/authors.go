package catalog

import (
	"context"

	"github.com/aoideee/locallibrary/internal/data"
)

// AuthorDetail is an author together with the books credited to them.
type AuthorDetail struct {
	Author *data.Author
	Books  []*data.Book
}

// AuthorDetail loads the author and their books concurrently.
func (s *Service) AuthorDetail(ctx context.Context, id string) (*AuthorDetail, error) {
	var d AuthorDetail
	err := fanOut(ctx,
		func(ctx context.Context) (err error) {
			d.Author, err = s.models.Authors.Get(ctx, id)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Books, err = s.models.Books.GetByAuthor(ctx, id)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateAuthor inserts a new author. Authors have no identity key, so two
// people with the same name are two records.
func (s *Service) CreateAuthor(ctx context.Context, author *data.Author) error {
	return s.models.Authors.Insert(ctx, author)
}

// UpdateAuthor replaces the stored author.
func (s *Service) UpdateAuthor(ctx context.Context, author *data.Author) error {
	return s.models.Authors.Update(ctx, author)
}

// DeleteAuthor removes the author unless books are still credited to them.
func (s *Service) DeleteAuthor(ctx context.Context, id string) (Deletion[data.Author, data.Book], error) {
	return guardedDelete(ctx,
		func(ctx context.Context) (*data.Author, error) { return s.models.Authors.Get(ctx, id) },
		func(ctx context.Context) ([]*data.Book, error) { return s.models.Books.GetByAuthor(ctx, id) },
		func(ctx context.Context) error { return s.models.Authors.Delete(ctx, id) },
	)
}
