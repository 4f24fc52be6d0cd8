package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Inbox is the persistence surface for doctor notifications.
type Inbox interface {
	Create(ctx context.Context, req *CreateRequest) (*Notification, error)
	ListForDoctor(ctx context.Context, doctorID int64, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, doctorID, id int64) (bool, error)
}

// db is the subset of pgxpool.Pool the store needs.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists notifications in Postgres.
type Store struct {
	db db
}

// NewStore initializes a notification store backed by pgx.
func NewStore(db db) *Store {
	if db == nil {
		panic("notifications: db required")
	}
	return &Store{db: db}
}

// Create inserts a new unread notification.
func (s *Store) Create(ctx context.Context, req *CreateRequest) (*Notification, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("notifications: marshal payload: %w", err)
	}
	if req.Payload == nil {
		payload = []byte("{}")
	}

	n := &Notification{
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Message:       req.Message,
		Payload:       payload,
	}
	query := `
		INSERT INTO notifications (doctor_id, appointment_id, message, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := s.db.QueryRow(ctx, query,
		req.DoctorID,
		req.AppointmentID,
		req.Message,
		payload,
	).Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("notifications: insert failed: %w", err)
	}
	return n, nil
}

// ListForDoctor returns a doctor's notifications, newest first. Ties on
// created_at break by id so the ordering is stable.
func (s *Store) ListForDoctor(ctx context.Context, doctorID int64, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT id, doctor_id, appointment_id, message, payload, read, created_at
		FROM notifications
		WHERE doctor_id = $1
	`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("notifications: list failed: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.ID,
			&n.DoctorID,
			&n.AppointmentID,
			&n.Message,
			&n.Payload,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("notifications: scan failed: %w", err)
		}
		n.Payload = sanitizePayload(n.Payload)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notifications: rows failed: %w", err)
	}
	return out, nil
}

// MarkRead flips a notification to read, scoped to the owning doctor. A
// missing row or one owned by a different doctor is a normal false outcome,
// not an error.
func (s *Store) MarkRead(ctx context.Context, doctorID, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND doctor_id = $2
	`, id, doctorID)
	if err != nil {
		return false, fmt.Errorf("notifications: mark read failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// sanitizePayload replaces unparseable stored payloads with an empty object
// so API clients always receive valid JSON.
func sanitizePayload(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("{}")
	}
	return raw
}
