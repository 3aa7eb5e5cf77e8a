package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aoideee/locallibrary/internal/catalog"
	"github.com/aoideee/locallibrary/internal/data"
)

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = objectID("not-an-object-id")
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
}

func TestBookRefs(t *testing.T) {
	author, genre := primitive.NewObjectID(), primitive.NewObjectID()

	a, gs, err := bookRefs(&data.Book{AuthorID: author.Hex(), GenreIDs: []string{genre.Hex()}})
	require.NoError(t, err)
	assert.Equal(t, author, a)
	assert.Equal(t, []primitive.ObjectID{genre}, gs)

	_, _, err = bookRefs(&data.Book{AuthorID: author.Hex(), GenreIDs: []string{"fantasy"}})
	assert.EqualError(t, err, `genre reference "fantasy" is not an object id`)
}

func TestBookFromDoc(t *testing.T) {
	doc := &bookDoc{ID: primitive.NewObjectID(), Title: "Dune", Author: primitive.NewObjectID()}
	b := bookFromDoc(doc)
	assert.Equal(t, doc.ID.Hex(), b.ID)
	assert.Equal(t, doc.Author.Hex(), b.AuthorID)
	assert.NotNil(t, b.GenreIDs)
	assert.Empty(t, b.GenreIDs)
}

// testDatabase connects to TEST_MONGO_URI and returns Models over a
// throwaway database that is dropped when the test ends.
func testDatabase(t *testing.T) data.Models {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping MongoDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database("locallibrary_test_" + uuid.NewString()[:8])
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return NewModels(db)
}

func TestMongoCatalog(t *testing.T) {
	models := testDatabase(t)
	ctx := context.Background()
	svc := catalog.New(models)

	fiction, created, err := svc.CreateGenre(ctx, &data.Genre{Name: "Fiction"})
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := svc.CreateGenre(ctx, &data.Genre{Name: "fiction"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, fiction.ID, again.ID)

	author := &data.Author{FirstName: "Ursula", FamilyName: "LeGuin", DateOfBirth: ptr(time.Date(1929, time.October, 21, 0, 0, 0, 0, time.UTC))}
	require.NoError(t, svc.CreateAuthor(ctx, author))

	book, created, err := svc.CreateBook(ctx, &data.Book{
		Title: "A Wizard of Earthsea", Summary: "s", ISBN: "9780547773742",
		AuthorID: author.ID, GenreIDs: []string{fiction.ID},
	})
	require.NoError(t, err)
	require.True(t, created)

	res, err := svc.DeleteAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.True(t, res.Blocked())
	require.Len(t, res.Dependents, 1)
	assert.Equal(t, book.ID, res.Dependents[0].ID)

	stored, err := models.Authors.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "1929-10-21", stored.DateOfBirthISO())

	bi := &data.BookInstance{BookID: book.ID, Imprint: "Parnassus, 1968.", Status: data.StatusAvailable, DueBack: time.Now().UTC()}
	require.NoError(t, svc.CreateBookInstance(ctx, bi))

	detail, err := svc.BookDetail(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "LeGuin, Ursula", detail.Book.Author.Name())
	require.Len(t, detail.Book.Genres, 1)
	require.Len(t, detail.Instances, 1)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Summary{Books: 1, BookInstances: 1, AvailableInstances: 1, Authors: 1, Genres: 1}, sum)

	require.NoError(t, svc.DeleteBookInstance(ctx, bi.ID))
	bookRes, err := svc.DeleteBook(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, bookRes.Deleted)

	_, err = models.Books.Get(ctx, book.ID)
	assert.ErrorIs(t, err, data.ErrRecordNotFound)
}

func ptr[T any](v T) *T { return &v }
