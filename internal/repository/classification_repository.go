package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lvaldez/driveline/internal/model"
)

// ErrClassificationExists is returned when a classification name is
// already taken.
var ErrClassificationExists = errors.New("classification already exists")

// ClassificationRepo encapsulates queries against the classifications table.
type ClassificationRepo struct{ DB *sql.DB }

func NewClassificationRepo(db *sql.DB) *ClassificationRepo { return &ClassificationRepo{DB: db} }

// Create inserts a new classification and returns its ID.
func (r *ClassificationRepo) Create(ctx context.Context, name string) (uint64, error) {
	name = strings.TrimSpace(name)
	res, err := r.DB.ExecContext(ctx, "INSERT INTO classifications (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrClassificationExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single classification.
func (r *ClassificationRepo) GetByID(ctx context.Context, id uint64) (model.Classification, error) {
	var c model.Classification
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM classifications WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Classification{}, ErrNotFound
	}
	return c, err
}

// List returns all classifications ordered by name. Every page renders
// this list into the navigation bar, and the vehicle forms use it for
// their category select.
func (r *ClassificationRepo) List(ctx context.Context) ([]model.Classification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, created_at FROM classifications ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Classification
	for rows.Next() {
		var c model.Classification
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
