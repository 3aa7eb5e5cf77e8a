package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/aoideee/locallibrary/internal/data"
)

// lookup fetches each distinct id once, concurrently. Ids that no longer
// resolve are left out of the result rather than failing the whole read.
func lookup[T any](ctx context.Context, ids []string, get func(context.Context, string) (*T, error)) (map[string]*T, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]*T, len(ids))
		fns []func(context.Context) error
	)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		fns = append(fns, func(ctx context.Context) error {
			v, err := get(ctx, id)
			if errors.Is(err, data.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}
	if len(fns) == 0 {
		return out, nil
	}
	return out, fanOut(ctx, fns...)
}

// populateAuthors fills in Book.Author.
func (s *Service) populateAuthors(ctx context.Context, books []*data.Book) error {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.AuthorID)
	}
	authors, err := lookup(ctx, ids, s.models.Authors.Get)
	if err != nil {
		return err
	}
	for _, b := range books {
		b.Author = authors[b.AuthorID]
	}
	return nil
}

// populateGenres fills in Book.Genres in the order the ids are stored.
func (s *Service) populateGenres(ctx context.Context, books []*data.Book) error {
	var ids []string
	for _, b := range books {
		ids = append(ids, b.GenreIDs...)
	}
	genres, err := lookup(ctx, ids, s.models.Genres.Get)
	if err != nil {
		return err
	}
	for _, b := range books {
		b.Genres = make([]*data.Genre, 0, len(b.GenreIDs))
		for _, id := range b.GenreIDs {
			if g, ok := genres[id]; ok {
				b.Genres = append(b.Genres, g)
			}
		}
	}
	return nil
}

// populateBooks fills in BookInstance.Book.
func (s *Service) populateBooks(ctx context.Context, instances []*data.BookInstance) error {
	ids := make([]string, 0, len(instances))
	for _, bi := range instances {
		ids = append(ids, bi.BookID)
	}
	books, err := lookup(ctx, ids, s.models.Books.Get)
	if err != nil {
		return err
	}
	for _, bi := range instances {
		bi.Book = books[bi.BookID]
	}
	return nil
}
