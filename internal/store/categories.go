package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/assetdesk/internal/model"
)

// CreateCategory creates a new asset category.
func CreateCategory(ctx context.Context, q Querier, name, prefix string) (*model.Category, error) {
	id := uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO categories (id, name, prefix) VALUES (?, ?, ?)`,
		id, name, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return GetCategory(ctx, q, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, q Querier, id string) (*model.Category, error) {
	c := &model.Category{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, prefix FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Prefix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// CategoryExists reports whether a category already uses the name or prefix.
func CategoryExists(ctx context.Context, q Querier, name, prefix string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE name = ? COLLATE NOCASE OR prefix = ?`,
		name, prefix,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking category: %w", err)
	}
	return count > 0, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, q Querier) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, prefix FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Prefix); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
