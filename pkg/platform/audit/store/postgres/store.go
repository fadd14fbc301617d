package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "roster/pkg/domain"
	audit "roster/pkg/platform/audit"
	txcontext "roster/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when one is in context.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var actor sql.NullString
	if !event.UserID.IsNil() {
		actor = sql.NullString{String: event.UserID.String(), Valid: true}
	}
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (category, action, actor_id, subject_id, reason, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, string(event.Category), event.Action, actor, event.Subject, event.Reason, event.RequestID, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns the events about one record, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, action, actor_id, subject_id, reason, request_id, occurred_at
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY occurred_at, id
	`, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e                          audit.Event
			category                   string
			actor, subj, reason, reqID sql.NullString
		)
		if err := rows.Scan(&category, &e.Action, &actor, &subj, &reason, &reqID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		if actor.Valid {
			if u, err := uuid.Parse(actor.String); err == nil {
				e.UserID = id.UserID(u)
			}
		}
		e.Subject, e.Reason, e.RequestID = subj.String, reason.String, reqID.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
