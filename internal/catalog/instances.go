package catalog

import (
	"context"
	"errors"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/validator"
)

// BookInstance loads one instance with its book populated.
func (s *Service) BookInstance(ctx context.Context, id string) (*data.BookInstance, error) {
	bi, err := s.models.BookInstances.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populateBooks(ctx, []*data.BookInstance{bi}); err != nil {
		return nil, err
	}
	return bi, nil
}

// ListBookInstances returns a page of instances with their books populated.
func (s *Service) ListBookInstances(ctx context.Context, f data.Filters) ([]*data.BookInstance, data.Metadata, error) {
	instances, meta, err := s.models.BookInstances.GetAll(ctx, f)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	if err := s.populateBooks(ctx, instances); err != nil {
		return nil, data.Metadata{}, err
	}
	return instances, meta, nil
}

// InstanceFormBooks lists every book for the instance form's picklist.
func (s *Service) InstanceFormBooks(ctx context.Context) ([]*data.Book, error) {
	books, _, err := s.models.Books.GetAll(ctx, data.Filters{Sort: "title", SortSafeList: []string{"title"}})
	return books, err
}

// CheckInstanceReferences records a field error when the book does not exist.
func (s *Service) CheckInstanceReferences(ctx context.Context, v *validator.Validator, in *data.BookInstanceInput) error {
	if in.Book == "" {
		return nil
	}
	_, err := s.models.Books.Get(ctx, in.Book)
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		v.AddError("book", "Book not found")
	case err != nil:
		return err
	}
	return nil
}

// CreateBookInstance inserts a new copy.
func (s *Service) CreateBookInstance(ctx context.Context, bi *data.BookInstance) error {
	return s.models.BookInstances.Insert(ctx, bi)
}

// UpdateBookInstance replaces the stored copy.
func (s *Service) UpdateBookInstance(ctx context.Context, bi *data.BookInstance) error {
	return s.models.BookInstances.Update(ctx, bi)
}

// DeleteBookInstance removes a copy. Nothing references instances, so the
// delete is never blocked.
func (s *Service) DeleteBookInstance(ctx context.Context, id string) error {
	return s.models.BookInstances.Delete(ctx, id)
}
