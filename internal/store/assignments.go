package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/assetdesk/internal/model"
)

const assignmentSelect = `SELECT s.id, s.asset_id, s.assigned_by_id, s.assigned_to_id, s.assigned_date, s.note,
	        s.state, s.created_at, s.updated_at, s.version,
	        a.code AS asset_code, a.name AS asset_name, ut.username AS assigned_to_name, ub.username AS assigned_by_name
	 FROM assignments s
	 JOIN assets a ON a.id = s.asset_id
	 JOIN users ut ON ut.id = s.assigned_to_id
	 JOIN users ub ON ub.id = s.assigned_by_id`

func scanAssignment(row interface{ Scan(...any) error }, s *model.Assignment) error {
	var note sql.NullString
	if err := row.Scan(&s.ID, &s.AssetID, &s.AssignedByID, &s.AssignedToID, &s.AssignedDate, &note,
		&s.State, &s.CreatedAt, &s.UpdatedAt, &s.Version,
		&s.AssetCode, &s.AssetName, &s.AssignedToName, &s.AssignedByName); err != nil {
		return err
	}
	s.Note = note.String
	return nil
}

// GetAssignment returns an assignment by ID.
func GetAssignment(ctx context.Context, q Querier, id string) (*model.Assignment, error) {
	s := &model.Assignment{}
	err := scanAssignment(q.QueryRowContext(ctx, assignmentSelect+` WHERE s.id = ?`, id), s)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	return s, nil
}

// ListAssignments returns assignments matching the filter, newest first.
func ListAssignments(ctx context.Context, q Querier, f model.AssignmentFilter) ([]model.Assignment, error) {
	query := assignmentSelect + ` WHERE 1=1`
	var args []any

	if f.AssignedToID != "" {
		query += ` AND s.assigned_to_id = ?`
		args = append(args, f.AssignedToID)
	}
	if f.Location != "" {
		query += ` AND a.location = ?`
		args = append(args, f.Location)
	}
	if len(f.States) > 0 {
		query += ` AND s.state IN (` + placeholders(len(f.States)) + `)`
		for _, st := range f.States {
			args = append(args, string(st))
		}
	}

	query += ` ORDER BY s.assigned_date DESC, s.created_at DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var s model.Assignment
		if err := scanAssignment(rows, &s); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, s)
	}
	return assignments, rows.Err()
}

func insertAssignment(ctx context.Context, q Querier, s *model.Assignment) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt
	s.Version = 1

	_, err := q.ExecContext(ctx,
		`INSERT INTO assignments (id, asset_id, assigned_by_id, assigned_to_id, assigned_date, note, state, created_at, updated_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AssetID, s.AssignedByID, s.AssignedToID, s.AssignedDate.UTC(), s.Note, string(s.State),
		s.CreatedAt.UTC(), s.UpdatedAt.UTC(), s.Version,
	)
	if err != nil {
		return fmt.Errorf("creating assignment: %w", err)
	}
	return nil
}

func updateAssignment(ctx context.Context, q Querier, s *model.Assignment) error {
	s.UpdatedAt = time.Now().UTC()
	result, err := q.ExecContext(ctx,
		`UPDATE assignments SET state = ?, note = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(s.State), s.Note, s.UpdatedAt, s.ID, s.Version,
	)
	if err != nil {
		return fmt.Errorf("updating assignment: %w", err)
	}
	if err := checkVersioned(result, "assignment"); err != nil {
		return err
	}
	s.Version++
	return nil
}

func deleteAssignment(ctx context.Context, q Querier, s *model.Assignment) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM assignments WHERE id = ? AND version = ?`,
		s.ID, s.Version,
	)
	if err != nil {
		return fmt.Errorf("deleting assignment: %w", err)
	}
	return checkVersioned(result, "assignment")
}
