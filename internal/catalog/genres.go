package catalog

import (
	"context"
	"errors"

	"github.com/aoideee/locallibrary/internal/data"
)

// GenreDetail is a genre together with the books filed under it.
type GenreDetail struct {
	Genre *data.Genre
	Books []*data.Book
}

// GenreDetail loads the genre and its books concurrently.
func (s *Service) GenreDetail(ctx context.Context, id string) (*GenreDetail, error) {
	var d GenreDetail
	err := fanOut(ctx,
		func(ctx context.Context) (err error) {
			d.Genre, err = s.models.Genres.Get(ctx, id)
			return err
		},
		func(ctx context.Context) (err error) {
			d.Books, err = s.models.Books.GetByGenre(ctx, id)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateGenre inserts genre unless one with the same name (ignoring case)
// already exists, in which case the existing genre is returned and created
// is false.
func (s *Service) CreateGenre(ctx context.Context, genre *data.Genre) (result *data.Genre, created bool, err error) {
	existing, err := s.models.Genres.GetByName(ctx, genre.Name)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, data.ErrRecordNotFound):
		return nil, false, err
	}

	if err := s.models.Genres.Insert(ctx, genre); err != nil {
		return nil, false, err
	}
	return genre, true, nil
}

// UpdateGenre renames genre. If another genre already carries the new name,
// nothing is written and that genre is returned with updated == false.
func (s *Service) UpdateGenre(ctx context.Context, genre *data.Genre) (result *data.Genre, updated bool, err error) {
	existing, err := s.models.Genres.GetByName(ctx, genre.Name)
	switch {
	case err == nil && existing.ID != genre.ID:
		return existing, false, nil
	case err != nil && !errors.Is(err, data.ErrRecordNotFound):
		return nil, false, err
	}

	if err := s.models.Genres.Update(ctx, genre); err != nil {
		return nil, false, err
	}
	return genre, true, nil
}

// DeleteGenre removes the genre unless books are still filed under it.
func (s *Service) DeleteGenre(ctx context.Context, id string) (Deletion[data.Genre, data.Book], error) {
	return guardedDelete(ctx,
		func(ctx context.Context) (*data.Genre, error) { return s.models.Genres.Get(ctx, id) },
		func(ctx context.Context) ([]*data.Book, error) { return s.models.Books.GetByGenre(ctx, id) },
		func(ctx context.Context) error { return s.models.Genres.Delete(ctx, id) },
	)
}
