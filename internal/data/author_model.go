// internal/data/author_model.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AuthorModel provides PostgreSQL persistence for authors.
type AuthorModel struct {
	DB *sql.DB
}

const authorColumns = `id, first_name, family_name, date_of_birth, date_of_death, created_at, updated_at`

func scanAuthor(row interface{ Scan(...any) error }, author *Author) error {
	var born, died sql.NullTime
	err := row.Scan(
		&author.ID,
		&author.FirstName,
		&author.FamilyName,
		&born,
		&died,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	author.DateOfBirth = nullTime(born)
	author.DateOfDeath = nullTime(died)
	return err
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// Insert adds a new author and writes the generated id and timestamps back.
func (m AuthorModel) Insert(ctx context.Context, author *Author) error {
	query := `
		INSERT INTO authors (id, first_name, family_name, date_of_birth, date_of_death, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`

	author.ID = newID()
	author.CreatedAt = time.Now().UTC()
	author.UpdatedAt = author.CreatedAt

	_, err := m.DB.ExecContext(ctx, query,
		author.ID,
		author.FirstName,
		author.FamilyName,
		author.DateOfBirth,
		author.DateOfDeath,
		author.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

// Get retrieves a single author by id.
func (m AuthorModel) Get(ctx context.Context, id string) (*Author, error) {
	if !validID(id) {
		return nil, ErrRecordNotFound
	}

	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	var author Author
	err := scanAuthor(m.DB.QueryRowContext(ctx, query, id), &author)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get author %s: %w", id, err)
	}
	return &author, nil
}

// GetAll lists authors ordered by family name unless filters say otherwise.
func (m AuthorModel) GetAll(ctx context.Context, filters Filters) ([]*Author, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), `+authorColumns+`
		FROM authors
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.SortField("family_name"), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.sqlLimit(), filters.Offset())
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	totalRecords := 0
	authors := []*Author{}
	for rows.Next() {
		var author Author
		var born, died sql.NullTime
		err := rows.Scan(
			&totalRecords,
			&author.ID,
			&author.FirstName,
			&author.FamilyName,
			&born,
			&died,
			&author.CreatedAt,
			&author.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("scan author: %w", err)
		}
		author.DateOfBirth = nullTime(born)
		author.DateOfDeath = nullTime(died)
		authors = append(authors, &author)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return authors, CalculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Count returns the number of authors.
func (m AuthorModel) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM authors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count authors: %w", err)
	}
	return n, nil
}

// Update replaces every editable column of the author.
func (m AuthorModel) Update(ctx context.Context, author *Author) error {
	if !validID(author.ID) {
		return ErrRecordNotFound
	}

	query := `
		UPDATE authors
		SET first_name = $1, family_name = $2, date_of_birth = $3, date_of_death = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`

	err := m.DB.QueryRowContext(ctx, query,
		author.FirstName,
		author.FamilyName,
		author.DateOfBirth,
		author.DateOfDeath,
		author.ID,
	).Scan(&author.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("update author %s: %w", author.ID, err)
	}
	return nil
}

// Delete removes the author with the given id.
func (m AuthorModel) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, m.DB, "authors", id)
}
