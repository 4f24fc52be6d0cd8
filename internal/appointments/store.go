package appointments

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the persistence surface for appointments.
type Repository interface {
	Create(ctx context.Context, req *BookingRequest, tokenAmount *int64, roomToken *string) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	ListForPatient(ctx context.Context, patientID int64) ([]Appointment, error)
	ListForDoctor(ctx context.Context, doctorID int64) ([]Appointment, error)
	UpdateStatus(ctx context.Context, doctorID, id int64, status string) (*Appointment, error)
	CancelByPatient(ctx context.Context, patientID, id int64) error
	ConfirmPayment(ctx context.Context, patientID, id, amount int64, roomToken string) (*Appointment, error)
}

// db is the subset of pgxpool.Pool the store needs.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists appointments in Postgres.
type Store struct {
	db db
}

// NewStore initializes an appointment store backed by pgx.
func NewStore(db db) *Store {
	if db == nil {
		panic("appointments: db required")
	}
	return &Store{db: db}
}

const apptColumns = `id, patient_id, patient_name, patient_phone, doctor_id, doctor_name, date, time, symptoms, status, payment_status, is_video_call, token_amount, room_token, priority, created_at`

const apptColumnsQualified = `a.id, a.patient_id, a.patient_name, a.patient_phone, a.doctor_id, a.doctor_name, a.date, a.time, a.symptoms, a.status, a.payment_status, a.is_video_call, a.token_amount, a.room_token, a.priority, a.created_at`

// Create inserts a pending, unpaid appointment.
func (s *Store) Create(ctx context.Context, req *BookingRequest, tokenAmount *int64, roomToken *string) (*Appointment, error) {
	appt := &Appointment{
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		PatientPhone:  req.PatientPhone,
		DoctorID:      req.DoctorID,
		DoctorName:    req.DoctorName,
		Date:          req.Date,
		Time:          req.Time,
		Symptoms:      req.Symptoms,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		IsVideoCall:   req.IsVideoCall,
		TokenAmount:   tokenAmount,
		RoomToken:     roomToken,
		Priority:      derivePriority(req.IsVideoCall, PaymentUnpaid),
	}
	query := `
		INSERT INTO appointments
			(patient_id, patient_name, patient_phone, doctor_id, doctor_name, date, time,
			 symptoms, status, payment_status, is_video_call, token_amount, room_token, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`
	if err := s.db.QueryRow(ctx, query,
		appt.PatientID,
		appt.PatientName,
		appt.PatientPhone,
		appt.DoctorID,
		appt.DoctorName,
		appt.Date,
		appt.Time,
		appt.Symptoms,
		appt.Status,
		appt.PaymentStatus,
		appt.IsVideoCall,
		appt.TokenAmount,
		appt.RoomToken,
		appt.Priority,
	).Scan(&appt.ID, &appt.CreatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return appt, nil
}

// GetByID fetches a single appointment.
func (s *Store) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, apptColumns)
	appt, err := scanAppointment(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// ListForPatient returns a patient's appointments, most recent visit first.
// The doctor's current name and specialty are joined at read time; the
// snapshotted doctor_name only shows through when the doctor row is gone.
func (s *Store) ListForPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(d.name, a.doctor_name), COALESCE(d.specialty, '')
		FROM appointments a
		LEFT JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.date DESC, a.time DESC, a.created_at DESC
	`, apptColumnsQualified)
	rows, err := s.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: patient list failed: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var appt Appointment
		var currentName, currentSpecialty string
		if err := rows.Scan(
			&appt.ID,
			&appt.PatientID,
			&appt.PatientName,
			&appt.PatientPhone,
			&appt.DoctorID,
			&appt.DoctorName,
			&appt.Date,
			&appt.Time,
			&appt.Symptoms,
			&appt.Status,
			&appt.PaymentStatus,
			&appt.IsVideoCall,
			&appt.TokenAmount,
			&appt.RoomToken,
			&appt.Priority,
			&appt.CreatedAt,
			&currentName,
			&currentSpecialty,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		appt.DoctorName = currentName
		appt.DoctorSpecialty = currentSpecialty
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows failed: %w", err)
	}
	return out, nil
}

// ListForDoctor returns a doctor's queue. Paid video consultations sort
// first, then soonest visits, then newest bookings.
func (s *Store) ListForDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY priority DESC, date ASC, time ASC, created_at DESC
	`, apptColumns)
	rows, err := s.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("appointments: doctor list failed: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// UpdateStatus sets a new status on an appointment owned by the doctor and
// re-derives queue priority from the row itself.
func (s *Store) UpdateStatus(ctx context.Context, doctorID, id int64, status string) (*Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET status = $3,
		    priority = CASE WHEN is_video_call AND payment_status = 'paid' THEN %d ELSE 0 END
		WHERE id = $1 AND doctor_id = $2
		RETURNING %s
	`, VideoPriority, apptColumns)
	appt, err := scanAppointment(s.db.QueryRow(ctx, query, id, doctorID, status))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: status update failed: %w", err)
	}
	return appt, nil
}

// CancelByPatient cancels a pending appointment owned by the patient. A
// missing row, someone else's row, and a non-pending row are all reported
// the same way.
func (s *Store) CancelByPatient(ctx context.Context, patientID, id int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = 'cancelled'
		WHERE id = $1 AND patient_id = $2 AND status = 'pending'
	`, id, patientID)
	if err != nil {
		return fmt.Errorf("appointments: cancel failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCannotCancel
	}
	return nil
}

// ConfirmPayment marks an appointment paid and upgrades it to a priority
// video consultation. Token amount and room token are only backfilled when
// absent, so re-running a payment is a no-op beyond the status flip.
func (s *Store) ConfirmPayment(ctx context.Context, patientID, id, amount int64, roomToken string) (*Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET payment_status = 'paid',
		    is_video_call = TRUE,
		    token_amount = COALESCE(token_amount, $3),
		    room_token = COALESCE(room_token, $4),
		    priority = %d
		WHERE id = $1 AND patient_id = $2
		RETURNING %s
	`, VideoPriority, apptColumns)
	appt, err := scanAppointment(s.db.QueryRow(ctx, query, id, patientID, amount, roomToken))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: payment update failed: %w", err)
	}
	return appt, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.PatientName,
		&appt.PatientPhone,
		&appt.DoctorID,
		&appt.DoctorName,
		&appt.Date,
		&appt.Time,
		&appt.Symptoms,
		&appt.Status,
		&appt.PaymentStatus,
		&appt.IsVideoCall,
		&appt.TokenAmount,
		&appt.RoomToken,
		&appt.Priority,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows failed: %w", err)
	}
	return out, nil
}
