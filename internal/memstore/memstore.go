// Package memstore is an in-memory implementation of the catalog stores. It
// is safe for concurrent use and is primarily intended for tests and local
// development.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aoideee/locallibrary/internal/data"
)

// Store holds every collection behind a single lock.
type Store struct {
	mu        sync.RWMutex
	books     map[string]data.Book
	authors   map[string]data.Author
	genres    map[string]data.Genre
	instances map[string]data.BookInstance

	now func() time.Time
}

var (
	_ data.BookStore         = bookStore{}
	_ data.AuthorStore       = authorStore{}
	_ data.GenreStore        = genreStore{}
	_ data.BookInstanceStore = instanceStore{}
)

// New creates an empty store.
func New() *Store {
	return &Store{
		books:     make(map[string]data.Book),
		authors:   make(map[string]data.Author),
		genres:    make(map[string]data.Genre),
		instances: make(map[string]data.BookInstance),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewModels returns Models backed by a fresh, empty store.
func NewModels() data.Models {
	return New().Models()
}

// Models exposes the store through the data store interfaces.
func (s *Store) Models() data.Models {
	return data.Models{
		Books:         bookStore{s},
		Authors:       authorStore{s},
		Genres:        genreStore{s},
		BookInstances: instanceStore{s},
	}
}

// Len reports how many records each collection holds, keyed by collection
// name. Tests use it to assert that a refused delete left the store alone.
func (s *Store) Len() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"books":         len(s.books),
		"authors":       len(s.authors),
		"genres":        len(s.genres),
		"bookinstances": len(s.instances),
	}
}

// sortRecords orders items by the comparator chosen for field, falling back
// to id so the order is stable.
func sortRecords[T any](items []T, cmps map[string]func(a, b T) int, field string, desc bool, id func(T) string) {
	by := cmps[field]
	slices.SortFunc(items, func(a, b T) int {
		c := 0
		if by != nil {
			c = by(a, b)
		}
		if desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(id(a), id(b))
		}
		return c
	})
}

func compareTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Books -----------------------------------------------------------------------

type bookStore struct{ s *Store }

var bookSorts = map[string]func(a, b *data.Book) int{
	"title":      func(a, b *data.Book) int { return cmp.Compare(a.Title, b.Title) },
	"isbn":       func(a, b *data.Book) int { return cmp.Compare(a.ISBN, b.ISBN) },
	"created_at": func(a, b *data.Book) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func cloneBook(b data.Book) *data.Book {
	b.GenreIDs = slices.Clone(b.GenreIDs)
	if b.GenreIDs == nil {
		b.GenreIDs = []string{}
	}
	b.Author = nil
	b.Genres = nil
	return &b
}

func (m bookStore) Insert(_ context.Context, book *data.Book) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	book.ID = uuid.NewString()
	book.CreatedAt = m.s.now()
	book.UpdatedAt = book.CreatedAt
	m.s.books[book.ID] = *cloneBook(*book)
	return nil
}

func (m bookStore) Get(_ context.Context, id string) (*data.Book, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	book, ok := m.s.books[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return cloneBook(book), nil
}

func (m bookStore) GetAll(_ context.Context, f data.Filters) ([]*data.Book, data.Metadata, error) {
	books := m.filter(func(*data.Book) bool { return true })
	sortRecords(books, bookSorts, f.SortField("title"), f.Descending(), func(b *data.Book) string { return b.ID })
	page, meta := data.Paginate(books, f)
	return page, meta, nil
}

func (m bookStore) GetByISBN(_ context.Context, isbn string) (*data.Book, error) {
	books := m.filter(func(b *data.Book) bool { return strings.EqualFold(b.ISBN, isbn) })
	if len(books) == 0 {
		return nil, data.ErrRecordNotFound
	}
	sortRecords(books, bookSorts, "created_at", false, func(b *data.Book) string { return b.ID })
	return books[0], nil
}

func (m bookStore) GetByAuthor(_ context.Context, authorID string) ([]*data.Book, error) {
	books := m.filter(func(b *data.Book) bool { return b.AuthorID == authorID })
	sortRecords(books, bookSorts, "title", false, func(b *data.Book) string { return b.ID })
	return books, nil
}

func (m bookStore) GetByGenre(_ context.Context, genreID string) ([]*data.Book, error) {
	books := m.filter(func(b *data.Book) bool { return b.HasGenre(genreID) })
	sortRecords(books, bookSorts, "title", false, func(b *data.Book) string { return b.ID })
	return books, nil
}

func (m bookStore) filter(keep func(*data.Book) bool) []*data.Book {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := []*data.Book{}
	for _, b := range m.s.books {
		if c := cloneBook(b); keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m bookStore) Count(_ context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.books), nil
}

func (m bookStore) Update(_ context.Context, book *data.Book) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	original, ok := m.s.books[book.ID]
	if !ok {
		return data.ErrRecordNotFound
	}
	book.CreatedAt = original.CreatedAt
	book.UpdatedAt = m.s.now()
	m.s.books[book.ID] = *cloneBook(*book)
	return nil
}

func (m bookStore) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.books[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(m.s.books, id)
	return nil
}

// Authors ---------------------------------------------------------------------

type authorStore struct{ s *Store }

var authorSorts = map[string]func(a, b *data.Author) int{
	"family_name":   func(a, b *data.Author) int { return cmp.Compare(a.FamilyName, b.FamilyName) },
	"first_name":    func(a, b *data.Author) int { return cmp.Compare(a.FirstName, b.FirstName) },
	"date_of_birth": func(a, b *data.Author) int { return compareTime(a.DateOfBirth, b.DateOfBirth) },
	"created_at":    func(a, b *data.Author) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func cloneAuthor(a data.Author) *data.Author {
	a.DateOfBirth = cloneTime(a.DateOfBirth)
	a.DateOfDeath = cloneTime(a.DateOfDeath)
	return &a
}

func (m authorStore) Insert(_ context.Context, author *data.Author) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	author.ID = uuid.NewString()
	author.CreatedAt = m.s.now()
	author.UpdatedAt = author.CreatedAt
	m.s.authors[author.ID] = *cloneAuthor(*author)
	return nil
}

func (m authorStore) Get(_ context.Context, id string) (*data.Author, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	author, ok := m.s.authors[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return cloneAuthor(author), nil
}

func (m authorStore) GetAll(_ context.Context, f data.Filters) ([]*data.Author, data.Metadata, error) {
	m.s.mu.RLock()
	authors := make([]*data.Author, 0, len(m.s.authors))
	for _, a := range m.s.authors {
		authors = append(authors, cloneAuthor(a))
	}
	m.s.mu.RUnlock()

	sortRecords(authors, authorSorts, f.SortField("family_name"), f.Descending(), func(a *data.Author) string { return a.ID })
	page, meta := data.Paginate(authors, f)
	return page, meta, nil
}

func (m authorStore) Count(_ context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.authors), nil
}

func (m authorStore) Update(_ context.Context, author *data.Author) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	original, ok := m.s.authors[author.ID]
	if !ok {
		return data.ErrRecordNotFound
	}
	author.CreatedAt = original.CreatedAt
	author.UpdatedAt = m.s.now()
	m.s.authors[author.ID] = *cloneAuthor(*author)
	return nil
}

func (m authorStore) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.authors[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(m.s.authors, id)
	return nil
}

// Genres ----------------------------------------------------------------------

type genreStore struct{ s *Store }

var genreSorts = map[string]func(a, b *data.Genre) int{
	"name":       func(a, b *data.Genre) int { return cmp.Compare(a.Name, b.Name) },
	"created_at": func(a, b *data.Genre) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (m genreStore) Insert(_ context.Context, genre *data.Genre) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	genre.ID = uuid.NewString()
	genre.CreatedAt = m.s.now()
	genre.UpdatedAt = genre.CreatedAt
	m.s.genres[genre.ID] = *genre
	return nil
}

func (m genreStore) Get(_ context.Context, id string) (*data.Genre, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	genre, ok := m.s.genres[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return &genre, nil
}

func (m genreStore) GetByName(_ context.Context, name string) (*data.Genre, error) {
	genres := m.all()
	sortRecords(genres, genreSorts, "created_at", false, func(g *data.Genre) string { return g.ID })
	for _, g := range genres {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (m genreStore) GetAll(_ context.Context, f data.Filters) ([]*data.Genre, data.Metadata, error) {
	genres := m.all()
	sortRecords(genres, genreSorts, f.SortField("name"), f.Descending(), func(g *data.Genre) string { return g.ID })
	page, meta := data.Paginate(genres, f)
	return page, meta, nil
}

func (m genreStore) all() []*data.Genre {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]*data.Genre, 0, len(m.s.genres))
	for _, g := range m.s.genres {
		out = append(out, &g)
	}
	return out
}

func (m genreStore) Count(_ context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.genres), nil
}

func (m genreStore) Update(_ context.Context, genre *data.Genre) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	original, ok := m.s.genres[genre.ID]
	if !ok {
		return data.ErrRecordNotFound
	}
	genre.CreatedAt = original.CreatedAt
	genre.UpdatedAt = m.s.now()
	m.s.genres[genre.ID] = *genre
	return nil
}

func (m genreStore) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.genres[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(m.s.genres, id)
	return nil
}

// Book instances --------------------------------------------------------------

type instanceStore struct{ s *Store }

var instanceSorts = map[string]func(a, b *data.BookInstance) int{
	"due_back":   func(a, b *data.BookInstance) int { return a.DueBack.Compare(b.DueBack) },
	"imprint":    func(a, b *data.BookInstance) int { return cmp.Compare(a.Imprint, b.Imprint) },
	"status":     func(a, b *data.BookInstance) int { return cmp.Compare(a.Status, b.Status) },
	"created_at": func(a, b *data.BookInstance) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func cloneInstance(bi data.BookInstance) *data.BookInstance {
	bi.Book = nil
	return &bi
}

func (m instanceStore) Insert(_ context.Context, bi *data.BookInstance) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if bi.Status == "" {
		bi.Status = data.DefaultStatus
	}
	bi.ID = uuid.NewString()
	bi.CreatedAt = m.s.now()
	bi.UpdatedAt = bi.CreatedAt
	if bi.DueBack.IsZero() {
		bi.DueBack = bi.CreatedAt
	}
	m.s.instances[bi.ID] = *cloneInstance(*bi)
	return nil
}

func (m instanceStore) Get(_ context.Context, id string) (*data.BookInstance, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	bi, ok := m.s.instances[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return cloneInstance(bi), nil
}

func (m instanceStore) GetAll(_ context.Context, f data.Filters) ([]*data.BookInstance, data.Metadata, error) {
	instances := m.filter(func(*data.BookInstance) bool { return true })
	sortRecords(instances, instanceSorts, f.SortField("due_back"), f.Descending(), func(bi *data.BookInstance) string { return bi.ID })
	page, meta := data.Paginate(instances, f)
	return page, meta, nil
}

func (m instanceStore) GetByBook(_ context.Context, bookID string) ([]*data.BookInstance, error) {
	instances := m.filter(func(bi *data.BookInstance) bool { return bi.BookID == bookID })
	sortRecords(instances, instanceSorts, "imprint", false, func(bi *data.BookInstance) string { return bi.ID })
	return instances, nil
}

func (m instanceStore) filter(keep func(*data.BookInstance) bool) []*data.BookInstance {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := []*data.BookInstance{}
	for _, bi := range m.s.instances {
		if c := cloneInstance(bi); keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m instanceStore) Count(_ context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.instances), nil
}

func (m instanceStore) CountByStatus(_ context.Context, status data.Status) (int, error) {
	return len(m.filter(func(bi *data.BookInstance) bool { return bi.Status == status })), nil
}

func (m instanceStore) Update(_ context.Context, bi *data.BookInstance) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	original, ok := m.s.instances[bi.ID]
	if !ok {
		return data.ErrRecordNotFound
	}
	bi.CreatedAt = original.CreatedAt
	bi.UpdatedAt = m.s.now()
	m.s.instances[bi.ID] = *cloneInstance(*bi)
	return nil
}

func (m instanceStore) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.instances[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(m.s.instances, id)
	return nil
}
