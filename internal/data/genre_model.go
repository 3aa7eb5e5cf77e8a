// internal/data/genre_model.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GenreModel provides PostgreSQL persistence for genres.
type GenreModel struct {
	DB *sql.DB
}

// Insert adds a new genre. Name uniqueness is checked by the caller.
func (m GenreModel) Insert(ctx context.Context, genre *Genre) error {
	query := `INSERT INTO genres (id, name, created_at, updated_at) VALUES ($1, $2, $3, $3)`

	genre.ID = newID()
	genre.CreatedAt = time.Now().UTC()
	genre.UpdatedAt = genre.CreatedAt

	if _, err := m.DB.ExecContext(ctx, query, genre.ID, genre.Name, genre.CreatedAt); err != nil {
		return fmt.Errorf("insert genre: %w", err)
	}
	return nil
}

// Get retrieves a single genre by id.
func (m GenreModel) Get(ctx context.Context, id string) (*Genre, error) {
	if !validID(id) {
		return nil, ErrRecordNotFound
	}
	query := `SELECT id, name, created_at, updated_at FROM genres WHERE id = $1`
	return m.getOne(ctx, query, id)
}

// GetByName finds the genre whose name matches case-insensitively. When
// several match, the oldest one wins.
func (m GenreModel) GetByName(ctx context.Context, name string) (*Genre, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM genres
		WHERE lower(name) = lower($1)
		ORDER BY created_at
		LIMIT 1`
	return m.getOne(ctx, query, name)
}

func (m GenreModel) getOne(ctx context.Context, query string, arg any) (*Genre, error) {
	var genre Genre
	err := m.DB.QueryRowContext(ctx, query, arg).Scan(&genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("get genre: %w", err)
		}
	}
	return &genre, nil
}

// GetAll lists genres ordered by name unless filters say otherwise.
func (m GenreModel) GetAll(ctx context.Context, filters Filters) ([]*Genre, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, name, created_at, updated_at
		FROM genres
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.SortField("name"), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.sqlLimit(), filters.Offset())
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	totalRecords := 0
	genres := []*Genre{}
	for rows.Next() {
		var genre Genre
		if err := rows.Scan(&totalRecords, &genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt); err != nil {
			return nil, Metadata{}, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, &genre)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return genres, CalculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Count returns the number of genres.
func (m GenreModel) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM genres`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return n, nil
}

// Update renames the genre.
func (m GenreModel) Update(ctx context.Context, genre *Genre) error {
	if !validID(genre.ID) {
		return ErrRecordNotFound
	}

	query := `UPDATE genres SET name = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`

	err := m.DB.QueryRowContext(ctx, query, genre.Name, genre.ID).Scan(&genre.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("update genre %s: %w", genre.ID, err)
	}
	return nil
}

// Delete removes the genre with the given id.
func (m GenreModel) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, m.DB, "genres", id)
}
