package data

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/locallibrary/internal/validator"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAuthorVirtualFields(t *testing.T) {
	a := &Author{ID: "42", FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: day(1920, time.January, 2), DateOfDeath: day(1992, time.April, 6)}

	assert.Equal(t, "Asimov, Isaac", a.Name())
	assert.Equal(t, "Jan 2, 1920 - Apr 6, 1992", a.Lifespan())
	assert.Equal(t, "/catalog/author/42", a.URL())
	assert.Equal(t, "1920-01-02", a.DateOfBirthISO())

	living := &Author{FirstName: "Patrick", DateOfBirth: day(1973, time.June, 6)}
	assert.Equal(t, "", living.Name())
	assert.Equal(t, "Jun 6, 1973 - ", living.Lifespan())
	assert.Equal(t, "", living.DateOfDeathISO())
}

func TestOtherURLs(t *testing.T) {
	assert.Equal(t, "/catalog/book/b1", (&Book{ID: "b1"}).URL())
	assert.Equal(t, "/catalog/genre/g1", (&Genre{ID: "g1"}).URL())
	assert.Equal(t, "/catalog/bookinstance/i1", (&BookInstance{ID: "i1"}).URL())
}

func TestBookInstanceDueBack(t *testing.T) {
	bi := &BookInstance{DueBack: *day(2026, time.October, 19)}
	assert.Equal(t, "Oct 19, 2026", bi.DueBackFormatted())
	assert.Equal(t, "2026-10-19", bi.DueBackYYYYMMDD())
}

func TestGenreValidation(t *testing.T) {
	in := NewGenreInput(url.Values{"name": {"  ab "}})
	v := validator.New()
	ValidateGenre(v, in)
	assert.Equal(t, []validator.FieldError{{Field: "name", Message: "Genre name must contain at least 3 characters"}}, v.FieldErrors())

	in = NewGenreInput(url.Values{"name": {" Sci & Fi "}})
	v = validator.New()
	ValidateGenre(v, in)
	assert.True(t, v.Valid())
	assert.Equal(t, "Sci &amp; Fi", in.Name)

	// Length is measured on the name as typed, not on its escaped form.
	for _, name := range []string{"<>", "a&", "''"} {
		v = validator.New()
		in = NewGenreInput(url.Values{"name": {name}})
		ValidateGenre(v, in)
		assert.Equal(t, []validator.FieldError{{Field: "name", Message: "Genre name must contain at least 3 characters"}}, v.FieldErrors(), name)
	}

	long := strings.Repeat("&", 100)
	v = validator.New()
	in = NewGenreInput(url.Values{"name": {long}})
	ValidateGenre(v, in)
	assert.True(t, v.Valid())
	assert.Equal(t, strings.Repeat("&amp;", 100), in.Name)
}

func TestAuthorValidation(t *testing.T) {
	t.Run("blank names", func(t *testing.T) {
		v := validator.New()
		ValidateAuthor(v, NewAuthorInput(url.Values{}))
		assert.Equal(t, []validator.FieldError{
			{Field: "first_name", Message: "First name must be specified."},
			{Field: "family_name", Message: "Family name must be specified."},
		}, v.FieldErrors())
	})

	t.Run("non alphanumeric", func(t *testing.T) {
		v := validator.New()
		in := NewAuthorInput(url.Values{"first_name": {"<b>"}, "family_name": {"Smith"}})
		ValidateAuthor(v, in)
		assert.Equal(t, "First name has non-alphanumeric characters.", v.Errors["first_name"])
		assert.Equal(t, "&lt;b&gt;", in.FirstName)
	})

	t.Run("dates", func(t *testing.T) {
		v := validator.New()
		in := NewAuthorInput(url.Values{
			"first_name":    {"Ben"},
			"family_name":   {"Bova"},
			"date_of_birth": {"not-a-date"},
			"date_of_death": {""},
		})
		ValidateAuthor(v, in)
		assert.Equal(t, []validator.FieldError{{Field: "date_of_birth", Message: "Invalid date of birth"}}, v.FieldErrors())
	})

	t.Run("apply", func(t *testing.T) {
		v := validator.New()
		in := NewAuthorInput(url.Values{
			"first_name":    {" Ben "},
			"family_name":   {"Bova"},
			"date_of_birth": {"1932-11-08"},
		})
		ValidateAuthor(v, in)
		require.True(t, v.Valid())

		var a Author
		in.Apply(&a)
		assert.Equal(t, "Ben", a.FirstName)
		require.NotNil(t, a.DateOfBirth)
		assert.Equal(t, "1932-11-08", a.DateOfBirthISO())
		assert.Nil(t, a.DateOfDeath)

		back := AuthorInputFrom(&a)
		assert.Equal(t, "1932-11-08", back.DateOfBirth)
	})
}

func TestBookValidation(t *testing.T) {
	v := validator.New()
	ValidateBook(v, NewBookInput(url.Values{}))
	assert.Equal(t, []validator.FieldError{
		{Field: "title", Message: "Title must not be empty."},
		{Field: "author", Message: "Author must not be empty."},
		{Field: "summary", Message: "Summary must not be empty."},
		{Field: "isbn", Message: "ISBN must not be empty"},
	}, v.FieldErrors())
}

func TestBookInputGenres(t *testing.T) {
	in := NewBookInput(url.Values{
		"title":   {"Dune"},
		"author":  {"a1"},
		"summary": {"Spice"},
		"isbn":    {"978"},
		"genre":   {"g1", " g2 ", "g1", ""},
	})
	assert.Equal(t, []string{"g1", "g2"}, in.Genres)
	assert.True(t, in.HasGenre("g2"))

	var b Book
	in.Apply(&b)
	assert.Equal(t, "a1", b.AuthorID)
	assert.Equal(t, []string{"g1", "g2"}, b.GenreIDs)
	assert.True(t, b.HasGenre("g1"))
	assert.False(t, b.HasGenre("g3"))

	assert.Equal(t, in.Genres, BookInputFrom(&b).Genres)
}

func TestBookInstanceValidation(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		v := validator.New()
		in := NewBookInstanceInput(url.Values{"book": {"b1"}, "imprint": {"Gollancz, 2011."}})
		ValidateBookInstance(v, in)
		require.True(t, v.Valid())

		var bi BookInstance
		in.Apply(&bi, now)
		assert.Equal(t, StatusMaintenance, bi.Status)
		assert.Equal(t, now, bi.DueBack)
	})

	t.Run("errors", func(t *testing.T) {
		v := validator.New()
		in := NewBookInstanceInput(url.Values{"status": {"Lost"}, "due_back": {"not-a-date"}})
		ValidateBookInstance(v, in)
		assert.Equal(t, []validator.FieldError{
			{Field: "book", Message: "Book must be specified"},
			{Field: "imprint", Message: "Imprint must be specified"},
			{Field: "status", Message: "Invalid status"},
			{Field: "due_back", Message: "Invalid date"},
		}, v.FieldErrors())
	})

	t.Run("explicit due date", func(t *testing.T) {
		v := validator.New()
		in := NewBookInstanceInput(url.Values{"book": {"b1"}, "imprint": {"x"}, "status": {"Loaned"}, "due_back": {"2026-11-01"}})
		ValidateBookInstance(v, in)
		require.True(t, v.Valid())

		var bi BookInstance
		in.Apply(&bi, now)
		assert.Equal(t, StatusLoaned, bi.Status)
		assert.Equal(t, "2026-11-01", bi.DueBackYYYYMMDD())
		assert.Equal(t, "2026-11-01", BookInstanceInputFrom(&bi).DueBack)
	})
}

func TestFilters(t *testing.T) {
	f := Filters{Page: 3, PageSize: 10, Sort: "-title", SortSafeList: []string{"title", "-title"}}

	v := validator.New()
	ValidateFilters(v, f)
	assert.True(t, v.Valid())
	assert.Equal(t, "title", f.SortField("id"))
	assert.True(t, f.Descending())
	assert.Equal(t, "DESC", f.sortDirection())
	assert.Equal(t, 20, f.Offset())
	assert.Equal(t, 10, f.sqlLimit())

	bad := Filters{Page: 0, PageSize: 101, Sort: "summary", SortSafeList: []string{"title"}}
	v = validator.New()
	ValidateFilters(v, bad)
	assert.Len(t, v.Errors, 3)
	assert.Equal(t, "id", bad.SortField("id"))

	unlimited := Filters{Page: 1}
	assert.Nil(t, unlimited.sqlLimit())
	assert.Equal(t, 0, unlimited.Offset())
}

func TestCalculateMetadata(t *testing.T) {
	assert.Equal(t, Metadata{}, CalculateMetadata(0, 1, 10))
	assert.Equal(t, Metadata{CurrentPage: 2, PageSize: 10, FirstPage: 1, LastPage: 3, TotalRecords: 21}, CalculateMetadata(21, 2, 10))
	assert.Equal(t, Metadata{CurrentPage: 1, FirstPage: 1, LastPage: 1, TotalRecords: 21}, CalculateMetadata(21, 1, 0))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Paginate(items, Filters{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, 3, meta.LastPage)

	page, _ = Paginate(items, Filters{Page: 3, PageSize: 2})
	assert.Equal(t, []int{5}, page)

	page, _ = Paginate(items, Filters{Page: 9, PageSize: 2})
	assert.Empty(t, page)

	page, meta = Paginate(items, Filters{Page: 1})
	assert.Equal(t, items, page)
	assert.Equal(t, 1, meta.LastPage)
}
