// internal/data/bookinstance_model.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BookInstanceModel provides PostgreSQL persistence for book instances.
type BookInstanceModel struct {
	DB *sql.DB
}

const instanceColumns = `id, book_id, imprint, status, due_back, created_at, updated_at`

func scanInstance(row interface{ Scan(...any) error }, bi *BookInstance) error {
	return row.Scan(
		&bi.ID,
		&bi.BookID,
		&bi.Imprint,
		&bi.Status,
		&bi.DueBack,
		&bi.CreatedAt,
		&bi.UpdatedAt,
	)
}

// Insert adds a new instance and writes the generated id and timestamps back.
func (m BookInstanceModel) Insert(ctx context.Context, bi *BookInstance) error {
	query := `
		INSERT INTO bookinstances (id, book_id, imprint, status, due_back, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`

	if bi.Status == "" {
		bi.Status = DefaultStatus
	}
	bi.ID = newID()
	bi.CreatedAt = time.Now().UTC()
	bi.UpdatedAt = bi.CreatedAt
	if bi.DueBack.IsZero() {
		bi.DueBack = bi.CreatedAt
	}

	_, err := m.DB.ExecContext(ctx, query, bi.ID, bi.BookID, bi.Imprint, bi.Status, bi.DueBack, bi.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert book instance: %w", err)
	}
	return nil
}

// Get retrieves a single instance by id.
func (m BookInstanceModel) Get(ctx context.Context, id string) (*BookInstance, error) {
	if !validID(id) {
		return nil, ErrRecordNotFound
	}

	query := `SELECT ` + instanceColumns + ` FROM bookinstances WHERE id = $1`

	var bi BookInstance
	if err := scanInstance(m.DB.QueryRowContext(ctx, query, id), &bi); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get book instance %s: %w", id, err)
	}
	return &bi, nil
}

// GetAll lists instances ordered by due date unless filters say otherwise.
func (m BookInstanceModel) GetAll(ctx context.Context, filters Filters) ([]*BookInstance, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), `+instanceColumns+`
		FROM bookinstances
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.SortField("due_back"), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.sqlLimit(), filters.Offset())
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("list book instances: %w", err)
	}
	defer rows.Close()

	totalRecords := 0
	instances := []*BookInstance{}
	for rows.Next() {
		var bi BookInstance
		err := rows.Scan(
			&totalRecords,
			&bi.ID,
			&bi.BookID,
			&bi.Imprint,
			&bi.Status,
			&bi.DueBack,
			&bi.CreatedAt,
			&bi.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("scan book instance: %w", err)
		}
		instances = append(instances, &bi)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return instances, CalculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// GetByBook lists the copies of a book.
func (m BookInstanceModel) GetByBook(ctx context.Context, bookID string) ([]*BookInstance, error) {
	if !validID(bookID) {
		return []*BookInstance{}, nil
	}

	query := `SELECT ` + instanceColumns + ` FROM bookinstances WHERE book_id = $1 ORDER BY imprint, id`

	rows, err := m.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list book instances for %s: %w", bookID, err)
	}
	defer rows.Close()

	instances := []*BookInstance{}
	for rows.Next() {
		var bi BookInstance
		if err := scanInstance(rows, &bi); err != nil {
			return nil, fmt.Errorf("scan book instance: %w", err)
		}
		instances = append(instances, &bi)
	}
	return instances, rows.Err()
}

// Count returns the number of instances.
func (m BookInstanceModel) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM bookinstances`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count book instances: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of instances in the given status.
func (m BookInstanceModel) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM bookinstances WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count book instances by status: %w", err)
	}
	return n, nil
}

// Update replaces every editable column of the instance.
func (m BookInstanceModel) Update(ctx context.Context, bi *BookInstance) error {
	if !validID(bi.ID) {
		return ErrRecordNotFound
	}

	query := `
		UPDATE bookinstances
		SET book_id = $1, imprint = $2, status = $3, due_back = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`

	err := m.DB.QueryRowContext(ctx, query, bi.BookID, bi.Imprint, bi.Status, bi.DueBack, bi.ID).Scan(&bi.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("update book instance %s: %w", bi.ID, err)
	}
	return nil
}

// Delete removes the instance with the given id.
func (m BookInstanceModel) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, m.DB, "bookinstances", id)
}
