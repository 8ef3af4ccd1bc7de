package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/assetdesk/internal/model"
)

const assetColumns = `a.id, a.code, a.category_id, a.name, a.specification, a.installed_date, a.location,
	a.state, a.created_at, a.updated_at, a.version, c.name AS category_name`

func scanAsset(row interface{ Scan(...any) error }, a *model.Asset) error {
	var spec sql.NullString
	if err := row.Scan(&a.ID, &a.Code, &a.CategoryID, &a.Name, &spec, &a.InstalledDate, &a.Location,
		&a.State, &a.CreatedAt, &a.UpdatedAt, &a.Version, &a.CategoryName); err != nil {
		return err
	}
	a.Specification = spec.String
	return nil
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, q Querier, id string) (*model.Asset, error) {
	a := &model.Asset{}
	err := scanAsset(q.QueryRowContext(ctx,
		`SELECT `+assetColumns+`
		 FROM assets a
		 JOIN categories c ON c.id = a.category_id
		 WHERE a.id = ?`, id,
	), a)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

func insertAsset(ctx context.Context, q Querier, a *model.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt
	a.Version = 1

	_, err := q.ExecContext(ctx,
		`INSERT INTO assets (id, code, category_id, name, specification, installed_date, location, state, created_at, updated_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Code, a.CategoryID, a.Name, a.Specification, a.InstalledDate.UTC(), a.Location, string(a.State),
		a.CreatedAt.UTC(), a.UpdatedAt.UTC(), a.Version,
	)
	if err != nil {
		return fmt.Errorf("creating asset: %w", err)
	}
	return nil
}

func updateAsset(ctx context.Context, q Querier, a *model.Asset) error {
	a.UpdatedAt = time.Now().UTC()
	result, err := q.ExecContext(ctx,
		`UPDATE assets SET name = ?, specification = ?, installed_date = ?, state = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		a.Name, a.Specification, a.InstalledDate.UTC(), string(a.State), a.UpdatedAt.UTC(), a.ID, a.Version,
	)
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}
	if err := checkVersioned(result, "asset"); err != nil {
		return err
	}
	a.Version++
	return nil
}

func deleteAsset(ctx context.Context, q Querier, a *model.Asset) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM assets WHERE id = ? AND version = ?`,
		a.ID, a.Version,
	)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	return checkVersioned(result, "asset")
}

func assetHasAssignments(ctx context.Context, q Querier, assetID string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE asset_id = ?`, assetID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking asset assignments: %w", err)
	}
	return count > 0, nil
}

var assetSortColumns = map[string]string{
	model.AssetSortName:          "a.name",
	model.AssetSortCode:          "a.code",
	model.AssetSortCategory:      "c.name",
	model.AssetSortState:         "a.state",
	model.AssetSortInstalledDate: "a.installed_date",
}

// ValidAssetSort reports whether field is a sortable asset column.
func ValidAssetSort(field string) bool {
	_, ok := assetSortColumns[field]
	return ok
}

// FilterAssets returns one page of assets matching the filter, plus the total match count.
// Page and PageSize must already be validated.
func FilterAssets(ctx context.Context, q Querier, f model.AssetFilter) (*model.AssetPage, error) {
	from := ` FROM assets a JOIN categories c ON c.id = a.category_id WHERE 1=1`
	var args []any

	if f.Location != "" {
		from += ` AND a.location = ?`
		args = append(args, f.Location)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		from += ` AND (a.code LIKE ? ESCAPE '\' OR a.name LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	if len(f.States) > 0 {
		from += ` AND a.state IN (` + placeholders(len(f.States)) + `)`
		for _, s := range f.States {
			args = append(args, string(s))
		}
	}
	if len(f.CategoryIDs) > 0 {
		from += ` AND a.category_id IN (` + placeholders(len(f.CategoryIDs)) + `)`
		for _, id := range f.CategoryIDs {
			args = append(args, id)
		}
	}

	page := &model.AssetPage{Page: f.Page, PageSize: f.PageSize, Items: []model.Asset{}}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*)`+from, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("counting assets: %w", err)
	}

	column, ok := assetSortColumns[f.SortBy]
	if !ok {
		column = "a.code"
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}
	query := `SELECT ` + assetColumns + from +
		` ORDER BY ` + column + ` ` + direction + `, a.code ASC LIMIT ? OFFSET ?`
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Asset
		if err := scanAsset(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		page.Items = append(page.Items, a)
	}
	return page, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
