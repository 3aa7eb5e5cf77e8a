package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/validator"
)

// BookDetail is a populated book together with its copies.
type BookDetail struct {
	Book      *data.Book
	Instances []*data.BookInstance
}

// BookDetail loads the book and its instances concurrently, then populates
// the author and genres.
func (s *Service) BookDetail(ctx context.Context, id string) (*BookDetail, error) {
	var d BookDetail
	err := fanOut(ctx,
		func(ctx context.Context) (err error) {
			d.Book, err = s.models.Books.Get(ctx, id)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Instances, err = s.models.BookInstances.GetByBook(ctx, id)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	if err := s.PopulateBooks(ctx, d.Book); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListBooks returns a page of books with their authors populated.
func (s *Service) ListBooks(ctx context.Context, f data.Filters) ([]*data.Book, data.Metadata, error) {
	books, meta, err := s.models.Books.GetAll(ctx, f)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	if err := s.populateAuthors(ctx, books); err != nil {
		return nil, data.Metadata{}, err
	}
	return books, meta, nil
}

// PopulateBooks fills in the author and genres of each book.
func (s *Service) PopulateBooks(ctx context.Context, books ...*data.Book) error {
	return fanOut(ctx,
		func(ctx context.Context) error { return s.populateAuthors(ctx, books) },
		func(ctx context.Context) error { return s.populateGenres(ctx, books) },
	)
}

// BookFormOptions are the picklists the book form offers.
type BookFormOptions struct {
	Authors []*data.Author
	Genres  []*data.Genre
}

// BookFormOptions loads every author and genre concurrently.
func (s *Service) BookFormOptions(ctx context.Context) (*BookFormOptions, error) {
	var opts BookFormOptions
	err := fanOut(ctx,
		func(ctx context.Context) (err error) {
			opts.Authors, _, err = s.models.Authors.GetAll(ctx, data.Filters{Sort: "family_name", SortSafeList: []string{"family_name"}})
			return err
		},
		func(ctx context.Context) (err error) {
			opts.Genres, _, err = s.models.Genres.GetAll(ctx, data.Filters{Sort: "name", SortSafeList: []string{"name"}})
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return &opts, nil
}

// CheckBookReferences resolves the author and genres named by the form and
// records a field error for each one that does not exist.
func (s *Service) CheckBookReferences(ctx context.Context, v *validator.Validator, in *data.BookInput) error {
	var (
		mu            sync.Mutex
		authorMissing bool
		genreMissing  bool
	)
	exists := func(err error, missing *bool) error {
		if errors.Is(err, data.ErrRecordNotFound) {
			mu.Lock()
			*missing = true
			mu.Unlock()
			return nil
		}
		return err
	}

	var fns []func(context.Context) error
	if in.Author != "" {
		fns = append(fns, func(ctx context.Context) error {
			_, err := s.models.Authors.Get(ctx, in.Author)
			return exists(err, &authorMissing)
		})
	}
	for _, id := range in.Genres {
		fns = append(fns, func(ctx context.Context) error {
			_, err := s.models.Genres.Get(ctx, id)
			return exists(err, &genreMissing)
		})
	}
	if len(fns) > 0 {
		if err := fanOut(ctx, fns...); err != nil {
			return err
		}
	}

	v.Check(!authorMissing, "author", "Author not found")
	v.Check(!genreMissing, "genre", "Genre not found")
	return nil
}

// CreateBook inserts book unless a book with the same ISBN (ignoring case)
// already exists, in which case that book is returned and created is false.
func (s *Service) CreateBook(ctx context.Context, book *data.Book) (result *data.Book, created bool, err error) {
	existing, err := s.models.Books.GetByISBN(ctx, book.ISBN)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, data.ErrRecordNotFound):
		return nil, false, err
	}

	if err := s.models.Books.Insert(ctx, book); err != nil {
		return nil, false, err
	}
	return book, true, nil
}

// UpdateBook replaces the stored book. If another book already has the new
// ISBN, nothing is written and that book is returned with updated == false.
func (s *Service) UpdateBook(ctx context.Context, book *data.Book) (result *data.Book, updated bool, err error) {
	existing, err := s.models.Books.GetByISBN(ctx, book.ISBN)
	switch {
	case err == nil && existing.ID != book.ID:
		return existing, false, nil
	case err != nil && !errors.Is(err, data.ErrRecordNotFound):
		return nil, false, err
	}

	if err := s.models.Books.Update(ctx, book); err != nil {
		return nil, false, err
	}
	return book, true, nil
}

// DeleteBook removes the book unless copies of it still exist.
func (s *Service) DeleteBook(ctx context.Context, id string) (Deletion[data.Book, data.BookInstance], error) {
	return guardedDelete(ctx,
		func(ctx context.Context) (*data.Book, error) { return s.models.Books.Get(ctx, id) },
		func(ctx context.Context) ([]*data.BookInstance, error) { return s.models.BookInstances.GetByBook(ctx, id) },
		func(ctx context.Context) error { return s.models.Books.Delete(ctx, id) },
	)
}
