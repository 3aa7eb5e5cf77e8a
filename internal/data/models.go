// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/aoideee/locallibrary/internal/validator"
)

// ErrRecordNotFound is returned when a lookup finds no matching record,
// including lookups by an identifier the backend cannot parse.
var ErrRecordNotFound = errors.New("record not found")

// BookStore persists book records. Genre and author references are stored as
// identifiers only; populating them is left to the caller.
type BookStore interface {
	Insert(ctx context.Context, book *Book) error
	Get(ctx context.Context, id string) (*Book, error)
	GetAll(ctx context.Context, filters Filters) ([]*Book, Metadata, error)
	GetByISBN(ctx context.Context, isbn string) (*Book, error)
	GetByAuthor(ctx context.Context, authorID string) ([]*Book, error)
	GetByGenre(ctx context.Context, genreID string) ([]*Book, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id string) error
}

// AuthorStore persists author records.
type AuthorStore interface {
	Insert(ctx context.Context, author *Author) error
	Get(ctx context.Context, id string) (*Author, error)
	GetAll(ctx context.Context, filters Filters) ([]*Author, Metadata, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, author *Author) error
	Delete(ctx context.Context, id string) error
}

// GenreStore persists genre records.
type GenreStore interface {
	Insert(ctx context.Context, genre *Genre) error
	Get(ctx context.Context, id string) (*Genre, error)
	// GetByName matches name case-insensitively.
	GetByName(ctx context.Context, name string) (*Genre, error)
	GetAll(ctx context.Context, filters Filters) ([]*Genre, Metadata, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, genre *Genre) error
	Delete(ctx context.Context, id string) error
}

// BookInstanceStore persists physical copies of books.
type BookInstanceStore interface {
	Insert(ctx context.Context, instance *BookInstance) error
	Get(ctx context.Context, id string) (*BookInstance, error)
	GetAll(ctx context.Context, filters Filters) ([]*BookInstance, Metadata, error)
	GetByBook(ctx context.Context, bookID string) ([]*BookInstance, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	Update(ctx context.Context, instance *BookInstance) error
	Delete(ctx context.Context, id string) error
}

// Models is a top-level container that groups all store types together.
// It is built once at startup by whichever backend is configured and handed
// to the catalog service and handlers.
type Models struct {
	Books         BookStore
	Authors       AuthorStore
	Genres        GenreStore
	BookInstances BookInstanceStore
}

// NewModels constructs Models backed by PostgreSQL through the given pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Books:         BookModel{DB: db},
		Authors:       AuthorModel{DB: db},
		Genres:        GenreModel{DB: db},
		BookInstances: BookInstanceModel{DB: db},
	}
}

// Filters holds pagination and sorting parameters extracted from URL query strings.
// A zero PageSize means "no limit".
type Filters struct {
	Page         int      // Current page number (1-indexed)
	PageSize     int      // Number of records per page
	Sort         string   // Field name to sort by (prefix with "-" for DESC)
	SortSafeList []string // Allowed sort values
}

// ValidateFilters checks page bounds and that Sort is on the safe list.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.PageSize >= 0, "page_size", "must not be negative")
	v.Check(f.PageSize <= 100, "page_size", "must be a maximum of 100")
	v.Check(validator.In(f.Sort, f.SortSafeList...), "sort", "invalid sort value")
}

// SortField returns the validated field name, or fallback when Sort is not
// on the safe list.
func (f Filters) SortField(fallback string) string {
	for _, safe := range f.SortSafeList {
		if f.Sort == safe {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	return fallback
}

// Descending reports whether the Sort value asks for descending order.
func (f Filters) Descending() bool {
	return strings.HasPrefix(f.Sort, "-")
}

// sortDirection returns "ASC" or "DESC" based on the Sort prefix.
func (f Filters) sortDirection() string {
	if f.Descending() {
		return "DESC"
	}
	return "ASC"
}

// Limit returns the page size, or 0 for no limit.
func (f Filters) Limit() int { return f.PageSize }

// Offset returns the number of records to skip. It is 0 when unpaginated.
func (f Filters) Offset() int {
	if f.PageSize == 0 || f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// sqlLimit is the LIMIT argument; NULL means no limit in PostgreSQL.
func (f Filters) sqlLimit() any {
	if f.PageSize == 0 {
		return nil
	}
	return f.PageSize
}

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// CalculateMetadata computes page metadata from total record count and filter values.
func CalculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	if pageSize == 0 {
		return Metadata{CurrentPage: 1, FirstPage: 1, LastPage: 1, TotalRecords: totalRecords}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}

// Paginate slices an already sorted set according to f. Backends that sort in
// process (the memory store) use it; the database backends page in the query.
func Paginate[T any](items []T, f Filters) ([]T, Metadata) {
	meta := CalculateMetadata(len(items), max(f.Page, 1), f.PageSize)
	start := f.Offset()
	if start >= len(items) {
		return []T{}, meta
	}
	end := len(items)
	if f.PageSize > 0 && start+f.PageSize < end {
		end = start + f.PageSize
	}
	return items[start:end], meta
}
