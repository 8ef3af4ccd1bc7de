package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/assetdesk/internal/model"
)

const returningSelect = `SELECT r.id, r.assignment_id, r.requested_by_id, r.accepted_by_id, r.returned_date,
	        r.state, r.created_at, r.version,
	        a.code AS asset_code, a.name AS asset_name, u.username AS requested_by_name
	 FROM returning_requests r
	 JOIN assignments s ON s.id = r.assignment_id
	 JOIN assets a ON a.id = s.asset_id
	 JOIN users u ON u.id = r.requested_by_id`

func scanReturningRequest(row interface{ Scan(...any) error }, r *model.ReturningRequest) error {
	var acceptedBy sql.NullString
	if err := row.Scan(&r.ID, &r.AssignmentID, &r.RequestedByID, &acceptedBy, &r.ReturnedDate,
		&r.State, &r.CreatedAt, &r.Version,
		&r.AssetCode, &r.AssetName, &r.RequestedByName); err != nil {
		return err
	}
	if acceptedBy.Valid {
		r.AcceptedByID = &acceptedBy.String
	}
	return nil
}

// GetReturningRequest returns a returning request by ID.
func GetReturningRequest(ctx context.Context, q Querier, id string) (*model.ReturningRequest, error) {
	r := &model.ReturningRequest{}
	err := scanReturningRequest(q.QueryRowContext(ctx, returningSelect+` WHERE r.id = ?`, id), r)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting returning request: %w", err)
	}
	return r, nil
}

// ListReturningRequests returns returning requests matching the filter, newest first.
func ListReturningRequests(ctx context.Context, q Querier, f model.ReturningFilter) ([]model.ReturningRequest, error) {
	query := returningSelect + ` WHERE 1=1`
	var args []any

	if f.Location != "" {
		query += ` AND a.location = ?`
		args = append(args, f.Location)
	}
	if len(f.States) > 0 {
		query += ` AND r.state IN (` + placeholders(len(f.States)) + `)`
		for _, st := range f.States {
			args = append(args, string(st))
		}
	}

	query += ` ORDER BY r.created_at DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing returning requests: %w", err)
	}
	defer rows.Close()

	var requests []model.ReturningRequest
	for rows.Next() {
		var r model.ReturningRequest
		if err := scanReturningRequest(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning returning request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func insertReturningRequest(ctx context.Context, q Querier, r *model.ReturningRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.Version = 1

	_, err := q.ExecContext(ctx,
		`INSERT INTO returning_requests (id, assignment_id, requested_by_id, accepted_by_id, returned_date, state, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.AssignmentID, r.RequestedByID, r.AcceptedByID, utcPtr(r.ReturnedDate), string(r.State),
		r.CreatedAt.UTC(), r.Version,
	)
	if err != nil {
		return fmt.Errorf("creating returning request: %w", err)
	}
	return nil
}

func updateReturningRequest(ctx context.Context, q Querier, r *model.ReturningRequest) error {
	result, err := q.ExecContext(ctx,
		`UPDATE returning_requests SET accepted_by_id = ?, returned_date = ?, state = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		r.AcceptedByID, utcPtr(r.ReturnedDate), string(r.State), r.ID, r.Version,
	)
	if err != nil {
		return fmt.Errorf("updating returning request: %w", err)
	}
	if err := checkVersioned(result, "returning request"); err != nil {
		return err
	}
	r.Version++
	return nil
}

// utcPtr returns a nullable UTC time argument.
func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
