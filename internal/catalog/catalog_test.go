package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/memstore"
	"github.com/aoideee/locallibrary/internal/validator"
)

type fixture struct {
	ctx   context.Context
	store *memstore.Store
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	return &fixture{ctx: context.Background(), store: store, svc: New(store.Models())}
}

func (f *fixture) author(t *testing.T, first, family string) *data.Author {
	t.Helper()
	a := &data.Author{FirstName: first, FamilyName: family}
	require.NoError(t, f.svc.CreateAuthor(f.ctx, a))
	return a
}

func (f *fixture) genre(t *testing.T, name string) *data.Genre {
	t.Helper()
	g, created, err := f.svc.CreateGenre(f.ctx, &data.Genre{Name: name})
	require.NoError(t, err)
	require.True(t, created)
	return g
}

func (f *fixture) book(t *testing.T, title, isbn string, author *data.Author, genres ...*data.Genre) *data.Book {
	t.Helper()
	b := &data.Book{Title: title, Summary: "summary", ISBN: isbn, AuthorID: author.ID, GenreIDs: []string{}}
	for _, g := range genres {
		b.GenreIDs = append(b.GenreIDs, g.ID)
	}
	b, created, err := f.svc.CreateBook(f.ctx, b)
	require.NoError(t, err)
	require.True(t, created)
	return b
}

func (f *fixture) instance(t *testing.T, book *data.Book, status data.Status) *data.BookInstance {
	t.Helper()
	bi := &data.BookInstance{BookID: book.ID, Imprint: "imprint", Status: status}
	require.NoError(t, f.svc.CreateBookInstance(f.ctx, bi))
	return bi
}

func TestCreateGenreIgnoresCase(t *testing.T) {
	f := newFixture(t)

	first := f.genre(t, "Fiction")
	for _, name := range []string{"fiction", "FICTION", "FiCtIoN"} {
		got, created, err := f.svc.CreateGenre(f.ctx, &data.Genre{Name: name})
		require.NoError(t, err)
		assert.False(t, created, name)
		assert.Equal(t, first.ID, got.ID, name)
		assert.Equal(t, first.URL(), got.URL())
	}

	assert.Equal(t, 1, f.store.Len()["genres"])
}

func TestUpdateGenreToTakenName(t *testing.T) {
	f := newFixture(t)
	fantasy := f.genre(t, "Fantasy")
	poetry := f.genre(t, "Poetry")

	rename := *poetry
	rename.Name = "FANTASY"
	got, updated, err := f.svc.UpdateGenre(f.ctx, &rename)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, fantasy.ID, got.ID)

	stored, err := f.svc.Models().Genres.Get(f.ctx, poetry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poetry", stored.Name)

	// Changing only the case of its own name is a real update.
	rename = *poetry
	rename.Name = "POETRY"
	got, updated, err = f.svc.UpdateGenre(f.ctx, &rename)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, poetry.ID, got.ID)
	assert.Equal(t, "POETRY", got.Name)
}

func TestCreateBookIsIdempotentOnISBN(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Ben", "Bova")
	first := f.book(t, "Death Wave", "978-X", a)

	got, created, err := f.svc.CreateBook(f.ctx, &data.Book{Title: "Other", ISBN: "978-x", AuthorID: a.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 1, f.store.Len()["books"])
}

func TestUpdateBookToTakenISBN(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Ben", "Bova")
	first := f.book(t, "Death Wave", "111", a)
	second := f.book(t, "Apes and Angels", "222", a)

	edit := *second
	edit.ISBN = "111"
	got, updated, err := f.svc.UpdateBook(f.ctx, &edit)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, first.ID, got.ID)

	edit = *second
	edit.Title = "Apes & Angels"
	got, updated, err = f.svc.UpdateBook(f.ctx, &edit)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, "Apes & Angels", got.Title)
}

func TestDeleteBlockedByDependents(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Patrick", "Rothfuss")
	g := f.genre(t, "Fantasy")
	b := f.book(t, "The Name of the Wind", "9781473211896", a, g)
	bi := f.instance(t, b, data.StatusAvailable)

	before := f.store.Len()

	t.Run("author", func(t *testing.T) {
		res, err := f.svc.DeleteAuthor(f.ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, res.Blocked())
		assert.False(t, res.Deleted)
		assert.Equal(t, a.ID, res.Target.ID)
		require.Len(t, res.Dependents, 1)
		assert.Equal(t, b.ID, res.Dependents[0].ID)

		_, err = f.svc.Models().Authors.Get(f.ctx, a.ID)
		assert.NoError(t, err)
	})

	t.Run("genre", func(t *testing.T) {
		res, err := f.svc.DeleteGenre(f.ctx, g.ID)
		require.NoError(t, err)
		assert.True(t, res.Blocked())
		require.Len(t, res.Dependents, 1)
		assert.Equal(t, b.ID, res.Dependents[0].ID)
	})

	t.Run("book", func(t *testing.T) {
		res, err := f.svc.DeleteBook(f.ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, res.Blocked())
		require.Len(t, res.Dependents, 1)
		assert.Equal(t, bi.ID, res.Dependents[0].ID)
	})

	assert.Equal(t, before, f.store.Len())
}

func TestDeleteRemovesExactlyOneRecord(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Isaac", "Asimov")
	keep := f.author(t, "Ben", "Bova")
	g := f.genre(t, "Science Fiction")
	other := f.genre(t, "Poetry")
	b := f.book(t, "Foundation", "1", a, g)
	bi := f.instance(t, b, data.StatusLoaned)
	f.instance(t, b, data.StatusAvailable)

	require.NoError(t, f.svc.DeleteBookInstance(f.ctx, bi.ID))
	assert.Equal(t, map[string]int{"books": 1, "authors": 2, "genres": 2, "bookinstances": 1}, f.store.Len())

	res, err := f.svc.DeleteGenre(f.ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Empty(t, res.Dependents)
	assert.Equal(t, map[string]int{"books": 1, "authors": 2, "genres": 1, "bookinstances": 1}, f.store.Len())

	resA, err := f.svc.DeleteAuthor(f.ctx, keep.ID)
	require.NoError(t, err)
	assert.True(t, resA.Deleted)
	assert.Equal(t, map[string]int{"books": 1, "authors": 1, "genres": 1, "bookinstances": 1}, f.store.Len())

	_, err = f.svc.Models().Authors.Get(f.ctx, a.ID)
	assert.NoError(t, err)
}

func TestDeleteMissingTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.DeleteGenre(f.ctx, "missing")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
	_, err = f.svc.DeleteAuthor(f.ctx, "missing")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
	_, err = f.svc.DeleteBook(f.ctx, "missing")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
	assert.ErrorIs(t, f.svc.DeleteBookInstance(f.ctx, "missing"), data.ErrRecordNotFound)
}

func TestCheckBookReferences(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Ben", "Bova")
	g := f.genre(t, "Science Fiction")

	v := validator.New()
	in := &data.BookInput{Author: a.ID, Genres: []string{g.ID}}
	require.NoError(t, f.svc.CheckBookReferences(f.ctx, v, in))
	assert.True(t, v.Valid())

	v = validator.New()
	in = &data.BookInput{Author: "nobody", Genres: []string{g.ID, "nothing", "nowhere"}}
	require.NoError(t, f.svc.CheckBookReferences(f.ctx, v, in))
	assert.Equal(t, []validator.FieldError{
		{Field: "author", Message: "Author not found"},
		{Field: "genre", Message: "Genre not found"},
	}, v.FieldErrors())

	// An empty author is a required-field error, not a reference error.
	v = validator.New()
	require.NoError(t, f.svc.CheckBookReferences(f.ctx, v, &data.BookInput{}))
	assert.True(t, v.Valid())
}

func TestCheckInstanceReferences(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Ben", "Bova")
	b := f.book(t, "Death Wave", "1", a)

	v := validator.New()
	require.NoError(t, f.svc.CheckInstanceReferences(f.ctx, v, &data.BookInstanceInput{Book: b.ID}))
	assert.True(t, v.Valid())

	require.NoError(t, f.svc.CheckInstanceReferences(f.ctx, v, &data.BookInstanceInput{Book: "gone"}))
	assert.Equal(t, "Book not found", v.Errors["book"])
}

func TestPopulation(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Patrick", "Rothfuss")
	g1 := f.genre(t, "Fantasy")
	g2 := f.genre(t, "Adventure")
	b := f.book(t, "The Wise Man's Fear", "9788401352836", a, g1, g2)
	bi := f.instance(t, b, data.StatusAvailable)

	detail, err := f.svc.BookDetail(f.ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Book.Author)
	assert.Equal(t, "Rothfuss, Patrick", detail.Book.Author.Name())
	require.Len(t, detail.Book.Genres, 2)
	assert.Equal(t, g1.ID, detail.Book.Genres[0].ID)
	assert.Equal(t, g2.ID, detail.Book.Genres[1].ID)
	require.Len(t, detail.Instances, 1)
	assert.Equal(t, bi.ID, detail.Instances[0].ID)

	got, err := f.svc.BookInstance(f.ctx, bi.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Book)
	assert.Equal(t, b.Title, got.Book.Title)

	list, meta, err := f.svc.ListBooks(f.ctx, data.Filters{Page: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Author)
	assert.Equal(t, 1, meta.TotalRecords)

	instances, _, err := f.svc.ListBookInstances(f.ctx, data.Filters{Page: 1})
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, b.ID, instances[0].Book.ID)
}

func TestDetails(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Ben", "Bova")
	g := f.genre(t, "Science Fiction")
	f.book(t, "Death Wave", "1", a, g)
	f.book(t, "Apes and Angels", "2", a)

	ad, err := f.svc.AuthorDetail(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, ad.Author.ID)
	assert.Len(t, ad.Books, 2)

	gd, err := f.svc.GenreDetail(f.ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, gd.Books, 1)
	assert.Equal(t, "Death Wave", gd.Books[0].Title)

	_, err = f.svc.GenreDetail(f.ctx, "missing")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)

	opts, err := f.svc.BookFormOptions(f.ctx)
	require.NoError(t, err)
	assert.Len(t, opts.Authors, 1)
	assert.Len(t, opts.Genres, 1)

	books, err := f.svc.InstanceFormBooks(f.ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Apes and Angels", books[0].Title)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	a := f.author(t, "Ben", "Bova")
	f.genre(t, "Science Fiction")
	b := f.book(t, "Death Wave", "1", a)
	f.instance(t, b, data.StatusAvailable)
	f.instance(t, b, data.StatusLoaned)

	sum, err := f.svc.Summary(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Books: 1, BookInstances: 2, AvailableInstances: 1, Authors: 1, Genres: 1}, sum)
}

// failingGenres makes every genre lookup fail.
type failingGenres struct {
	data.GenreStore
}

var errStore = errors.New("store unavailable")

func (failingGenres) Get(context.Context, string) (*data.Genre, error) { return nil, errStore }

func TestFanOutReturnsStoreErrors(t *testing.T) {
	models := memstore.NewModels()
	models.Genres = failingGenres{models.Genres}
	svc := New(models)

	_, err := svc.GenreDetail(context.Background(), "any")
	assert.ErrorIs(t, err, errStore)

	v := validator.New()
	err = svc.CheckBookReferences(context.Background(), v, &data.BookInput{Genres: []string{"g"}})
	assert.ErrorIs(t, err, errStore)
}
