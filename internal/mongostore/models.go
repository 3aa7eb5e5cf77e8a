package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aoideee/locallibrary/internal/data"
)

var (
	_ data.BookStore         = BookModel{}
	_ data.AuthorStore       = AuthorModel{}
	_ data.GenreStore        = GenreModel{}
	_ data.BookInstanceStore = BookInstanceModel{}
)

// Books -----------------------------------------------------------------------

type bookDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Title     string               `bson:"title"`
	Author    primitive.ObjectID   `bson:"author"`
	Summary   string               `bson:"summary"`
	ISBN      string               `bson:"isbn"`
	Genre     []primitive.ObjectID `bson:"genre"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func bookFromDoc(d *bookDoc) *data.Book {
	genres := make([]string, 0, len(d.Genre))
	for _, g := range d.Genre {
		genres = append(genres, g.Hex())
	}
	return &data.Book{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		AuthorID:  d.Author.Hex(),
		Summary:   d.Summary,
		ISBN:      d.ISBN,
		GenreIDs:  genres,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func bookRefs(b *data.Book) (primitive.ObjectID, []primitive.ObjectID, error) {
	author, err := reference("author", b.AuthorID)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}
	genres := make([]primitive.ObjectID, 0, len(b.GenreIDs))
	for _, id := range b.GenreIDs {
		oid, err := reference("genre", id)
		if err != nil {
			return primitive.NilObjectID, nil, err
		}
		genres = append(genres, oid)
	}
	return author, genres, nil
}

// BookModel persists books in the books collection.
type BookModel struct {
	c collection[bookDoc, data.Book]
}

func (m BookModel) Insert(ctx context.Context, book *data.Book) error {
	author, genres, err := bookRefs(book)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := bookDoc{
		Title:     book.Title,
		Author:    author,
		Summary:   book.Summary,
		ISBN:      book.ISBN,
		Genre:     genres,
		CreatedAt: now,
		UpdatedAt: now,
	}
	oid, err := m.c.insert(ctx, &doc)
	if err != nil {
		return err
	}
	book.ID = oid.Hex()
	book.CreatedAt = now
	book.UpdatedAt = now
	return nil
}

func (m BookModel) Get(ctx context.Context, id string) (*data.Book, error) {
	return m.c.get(ctx, id)
}

func (m BookModel) GetAll(ctx context.Context, f data.Filters) ([]*data.Book, data.Metadata, error) {
	return m.c.list(ctx, f)
}

// GetByISBN matches the ISBN case-insensitively, oldest first.
func (m BookModel) GetByISBN(ctx context.Context, isbn string) (*data.Book, error) {
	opts := options.FindOne().
		SetCollation(caseInsensitive).
		SetSort(bson.D{{Key: "created_at", Value: 1}})
	return m.c.findOne(ctx, bson.M{"isbn": isbn}, opts)
}

func (m BookModel) GetByAuthor(ctx context.Context, authorID string) ([]*data.Book, error) {
	oid, err := objectID(authorID)
	if err != nil {
		return []*data.Book{}, nil
	}
	return m.c.find(ctx, bson.M{"author": oid}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
}

// GetByGenre relies on equality against an array field matching any element.
func (m BookModel) GetByGenre(ctx context.Context, genreID string) ([]*data.Book, error) {
	oid, err := objectID(genreID)
	if err != nil {
		return []*data.Book{}, nil
	}
	return m.c.find(ctx, bson.M{"genre": oid}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
}

func (m BookModel) Count(ctx context.Context) (int, error) {
	return m.c.count(ctx, bson.D{})
}

func (m BookModel) Update(ctx context.Context, book *data.Book) error {
	author, genres, err := bookRefs(book)
	if err != nil {
		return err
	}
	updated, err := m.c.set(ctx, book.ID, bson.M{
		"title":   book.Title,
		"author":  author,
		"summary": book.Summary,
		"isbn":    book.ISBN,
		"genre":   genres,
	})
	if err != nil {
		return err
	}
	book.UpdatedAt = updated
	return nil
}

func (m BookModel) Delete(ctx context.Context, id string) error {
	return m.c.delete(ctx, id)
}

// Authors ---------------------------------------------------------------------

type authorDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FirstName   string             `bson:"first_name"`
	FamilyName  string             `bson:"family_name"`
	DateOfBirth *time.Time         `bson:"date_of_birth,omitempty"`
	DateOfDeath *time.Time         `bson:"date_of_death,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func authorFromDoc(d *authorDoc) *data.Author {
	return &data.Author{
		ID:          d.ID.Hex(),
		FirstName:   d.FirstName,
		FamilyName:  d.FamilyName,
		DateOfBirth: utc(d.DateOfBirth),
		DateOfDeath: utc(d.DateOfDeath),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// AuthorModel persists authors in the authors collection.
type AuthorModel struct {
	c collection[authorDoc, data.Author]
}

func (m AuthorModel) Insert(ctx context.Context, author *data.Author) error {
	now := time.Now().UTC()
	oid, err := m.c.insert(ctx, &authorDoc{
		FirstName:   author.FirstName,
		FamilyName:  author.FamilyName,
		DateOfBirth: author.DateOfBirth,
		DateOfDeath: author.DateOfDeath,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}
	author.ID = oid.Hex()
	author.CreatedAt = now
	author.UpdatedAt = now
	return nil
}

func (m AuthorModel) Get(ctx context.Context, id string) (*data.Author, error) {
	return m.c.get(ctx, id)
}

func (m AuthorModel) GetAll(ctx context.Context, f data.Filters) ([]*data.Author, data.Metadata, error) {
	return m.c.list(ctx, f)
}

func (m AuthorModel) Count(ctx context.Context) (int, error) {
	return m.c.count(ctx, bson.D{})
}

func (m AuthorModel) Update(ctx context.Context, author *data.Author) error {
	updated, err := m.c.set(ctx, author.ID, bson.M{
		"first_name":    author.FirstName,
		"family_name":   author.FamilyName,
		"date_of_birth": author.DateOfBirth,
		"date_of_death": author.DateOfDeath,
	})
	if err != nil {
		return err
	}
	author.UpdatedAt = updated
	return nil
}

func (m AuthorModel) Delete(ctx context.Context, id string) error {
	return m.c.delete(ctx, id)
}

// Genres ----------------------------------------------------------------------

type genreDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func genreFromDoc(d *genreDoc) *data.Genre {
	return &data.Genre{ID: d.ID.Hex(), Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// GenreModel persists genres in the genres collection.
type GenreModel struct {
	c collection[genreDoc, data.Genre]
}

func (m GenreModel) Insert(ctx context.Context, genre *data.Genre) error {
	now := time.Now().UTC()
	oid, err := m.c.insert(ctx, &genreDoc{Name: genre.Name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return err
	}
	genre.ID = oid.Hex()
	genre.CreatedAt = now
	genre.UpdatedAt = now
	return nil
}

func (m GenreModel) Get(ctx context.Context, id string) (*data.Genre, error) {
	return m.c.get(ctx, id)
}

// GetByName uses the collated name index, so "Fiction" finds "fiction".
func (m GenreModel) GetByName(ctx context.Context, name string) (*data.Genre, error) {
	opts := options.FindOne().
		SetCollation(caseInsensitive).
		SetSort(bson.D{{Key: "created_at", Value: 1}})
	return m.c.findOne(ctx, bson.M{"name": name}, opts)
}

func (m GenreModel) GetAll(ctx context.Context, f data.Filters) ([]*data.Genre, data.Metadata, error) {
	return m.c.list(ctx, f)
}

func (m GenreModel) Count(ctx context.Context) (int, error) {
	return m.c.count(ctx, bson.D{})
}

func (m GenreModel) Update(ctx context.Context, genre *data.Genre) error {
	updated, err := m.c.set(ctx, genre.ID, bson.M{"name": genre.Name})
	if err != nil {
		return err
	}
	genre.UpdatedAt = updated
	return nil
}

func (m GenreModel) Delete(ctx context.Context, id string) error {
	return m.c.delete(ctx, id)
}

// Book instances --------------------------------------------------------------

type instanceDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Book      primitive.ObjectID `bson:"book"`
	Imprint   string             `bson:"imprint"`
	Status    string             `bson:"status"`
	DueBack   time.Time          `bson:"due_back"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func instanceFromDoc(d *instanceDoc) *data.BookInstance {
	return &data.BookInstance{
		ID:        d.ID.Hex(),
		BookID:    d.Book.Hex(),
		Imprint:   d.Imprint,
		Status:    data.Status(d.Status),
		DueBack:   d.DueBack.UTC(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// BookInstanceModel persists instances in the bookinstances collection.
type BookInstanceModel struct {
	c collection[instanceDoc, data.BookInstance]
}

func (m BookInstanceModel) Insert(ctx context.Context, bi *data.BookInstance) error {
	book, err := reference("book", bi.BookID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if bi.Status == "" {
		bi.Status = data.DefaultStatus
	}
	if bi.DueBack.IsZero() {
		bi.DueBack = now
	}
	oid, err := m.c.insert(ctx, &instanceDoc{
		Book:      book,
		Imprint:   bi.Imprint,
		Status:    string(bi.Status),
		DueBack:   bi.DueBack,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	bi.ID = oid.Hex()
	bi.CreatedAt = now
	bi.UpdatedAt = now
	return nil
}

func (m BookInstanceModel) Get(ctx context.Context, id string) (*data.BookInstance, error) {
	return m.c.get(ctx, id)
}

func (m BookInstanceModel) GetAll(ctx context.Context, f data.Filters) ([]*data.BookInstance, data.Metadata, error) {
	return m.c.list(ctx, f)
}

func (m BookInstanceModel) GetByBook(ctx context.Context, bookID string) ([]*data.BookInstance, error) {
	oid, err := objectID(bookID)
	if err != nil {
		return []*data.BookInstance{}, nil
	}
	return m.c.find(ctx, bson.M{"book": oid}, options.Find().SetSort(bson.D{{Key: "imprint", Value: 1}}))
}

func (m BookInstanceModel) Count(ctx context.Context) (int, error) {
	return m.c.count(ctx, bson.D{})
}

func (m BookInstanceModel) CountByStatus(ctx context.Context, status data.Status) (int, error) {
	return m.c.count(ctx, bson.M{"status": string(status)})
}

func (m BookInstanceModel) Update(ctx context.Context, bi *data.BookInstance) error {
	book, err := reference("book", bi.BookID)
	if err != nil {
		return err
	}
	updated, err := m.c.set(ctx, bi.ID, bson.M{
		"book":     book,
		"imprint":  bi.Imprint,
		"status":   string(bi.Status),
		"due_back": bi.DueBack,
	})
	if err != nil {
		return err
	}
	bi.UpdatedAt = updated
	return nil
}

func (m BookInstanceModel) Delete(ctx context.Context, id string) error {
	return m.c.delete(ctx, id)
}
