// internal/data/book_model.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book records.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

const bookColumns = `id, title, author_id, summary, isbn, genre_ids, created_at, updated_at`

// scanBook reads one row selected with bookColumns.
func scanBook(row interface{ Scan(...any) error }, book *Book) error {
	var genreIDs []string
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.AuthorID,
		&book.Summary,
		&book.ISBN,
		pq.Array(&genreIDs),
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if genreIDs == nil {
		genreIDs = []string{}
	}
	book.GenreIDs = genreIDs
	return err
}

// genreArray encodes ids for a uuid[] column; nil becomes an empty array
// because the column is NOT NULL.
func genreArray(ids []string) any {
	if ids == nil {
		ids = []string{}
	}
	return pq.Array(ids)
}

// checkBookRefs rejects author and genre ids that are not UUIDs before they
// reach a uuid column.
func checkBookRefs(book *Book) error {
	if !validID(book.AuthorID) {
		return fmt.Errorf("author reference %q is not a uuid", book.AuthorID)
	}
	if !validIDs(book.GenreIDs) {
		return fmt.Errorf("genre references %q are not all uuids", book.GenreIDs)
	}
	return nil
}

// Insert adds a new book record to the database.
// The generated id and timestamps are written back into the book struct.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	if err := checkBookRefs(book); err != nil {
		return err
	}

	query := `
		INSERT INTO books (id, title, author_id, summary, isbn, genre_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	book.ID = newID()
	book.CreatedAt = time.Now().UTC()
	book.UpdatedAt = book.CreatedAt

	_, err := m.DB.ExecContext(ctx, query,
		book.ID,
		book.Title,
		book.AuthorID,
		book.Summary,
		book.ISBN,
		genreArray(book.GenreIDs),
		book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id string) (*Book, error) {
	if !validID(id) {
		return nil, ErrRecordNotFound
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	var book Book
	err := scanBook(m.DB.QueryRowContext(ctx, query, id), &book)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("get book %s: %w", id, err)
		}
	}
	return &book, nil
}

// GetByISBN finds a book whose ISBN matches case-insensitively.
func (m BookModel) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE lower(isbn) = lower($1) ORDER BY created_at LIMIT 1`

	var book Book
	err := scanBook(m.DB.QueryRowContext(ctx, query, isbn), &book)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get book by isbn: %w", err)
	}
	return &book, nil
}

// GetAll retrieves a sorted, optionally paginated list of books.
// It uses a COUNT(*) OVER() window function so only one round-trip is needed.
func (m BookModel) GetAll(ctx context.Context, filters Filters) ([]*Book, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), `+bookColumns+`
		FROM books
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.SortField("title"), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.sqlLimit(), filters.Offset())
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	totalRecords := 0
	books := []*Book{}

	for rows.Next() {
		var book Book
		var genreIDs []string
		err := rows.Scan(
			&totalRecords, // COUNT(*) OVER() – same value on every row
			&book.ID,
			&book.Title,
			&book.AuthorID,
			&book.Summary,
			&book.ISBN,
			pq.Array(&genreIDs),
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("scan book: %w", err)
		}
		if genreIDs == nil {
			genreIDs = []string{}
		}
		book.GenreIDs = genreIDs
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// GetByAuthor lists the books credited to the author, sorted by title.
func (m BookModel) GetByAuthor(ctx context.Context, authorID string) ([]*Book, error) {
	if !validID(authorID) {
		return []*Book{}, nil
	}
	query := `SELECT ` + bookColumns + ` FROM books WHERE author_id = $1 ORDER BY title, id`
	return m.query(ctx, query, authorID)
}

// GetByGenre lists the books tagged with the genre, sorted by title.
func (m BookModel) GetByGenre(ctx context.Context, genreID string) ([]*Book, error) {
	if !validID(genreID) {
		return []*Book{}, nil
	}
	query := `SELECT ` + bookColumns + ` FROM books WHERE $1 = ANY(genre_ids) ORDER BY title, id`
	return m.query(ctx, query, genreID)
}

func (m BookModel) query(ctx context.Context, query string, args ...any) ([]*Book, error) {
	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		if err := scanBook(rows, &book); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, &book)
	}
	return books, rows.Err()
}

// Count returns the number of books.
func (m BookModel) Count(ctx context.Context) (int, error) {
	var n int
	err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM books`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// Update replaces every editable column of the book.
// Returns ErrRecordNotFound if the book no longer exists.
func (m BookModel) Update(ctx context.Context, book *Book) error {
	if !validID(book.ID) {
		return ErrRecordNotFound
	}
	if err := checkBookRefs(book); err != nil {
		return err
	}

	query := `
		UPDATE books
		SET title = $1, author_id = $2, summary = $3, isbn = $4, genre_ids = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at`

	args := []any{
		book.Title,
		book.AuthorID,
		book.Summary,
		book.ISBN,
		genreArray(book.GenreIDs),
		book.ID,
	}

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("update book %s: %w", book.ID, err)
	}
	return nil
}

// Delete removes the book with the given id.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookModel) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, m.DB, "books", id)
}

// deleteByID runs a single-row DELETE and reports a missing row as
// ErrRecordNotFound. table is always a constant supplied by a model.
func deleteByID(ctx context.Context, db *sql.DB, table, id string) error {
	if !validID(id) {
		return ErrRecordNotFound
	}

	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
