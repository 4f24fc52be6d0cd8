package doctors

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// db is the subset of pgxpool.Pool the store needs. Narrow on purpose so
// pgxmock can stand in during tests.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads doctor profiles from Postgres.
type Store struct {
	db db
}

// NewStore initializes a doctor store backed by pgx.
func NewStore(db db) *Store {
	if db == nil {
		panic("doctors: db required")
	}
	return &Store{db: db}
}

const doctorColumns = `id, user_id, name, specialty, experience, rating, location, fees, available, image_url, created_at`

// Search returns available doctors matching the filter, best-rated first.
func (s *Store) Search(ctx context.Context, filter SearchFilter) ([]Doctor, error) {
	var (
		conds = []string{"available"}
		args  []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR specialty ILIKE $%d)", n, n))
	}
	if sp := strings.TrimSpace(filter.Specialty); sp != "" {
		args = append(args, sp)
		conds = append(conds, fmt.Sprintf("specialty = $%d", len(args)))
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		args = append(args, loc)
		conds = append(conds, fmt.Sprintf("location = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM doctors
		WHERE %s
		ORDER BY rating DESC, experience DESC, name ASC
	`, doctorColumns, strings.Join(conds, " AND "))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("doctors: search failed: %w", err)
	}
	defer rows.Close()
	return scanDoctors(rows)
}

// GetByID fetches a single doctor.
func (s *Store) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	query := fmt.Sprintf(`SELECT %s FROM doctors WHERE id = $1`, doctorColumns)
	row := s.db.QueryRow(ctx, query, id)
	doc, err := scanDoctor(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("doctors: select failed: %w", err)
	}
	return doc, nil
}

// Facets lists the distinct specialties and locations across available doctors.
func (s *Store) Facets(ctx context.Context) (*Facets, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT specialty, location
		FROM doctors
		WHERE available
		ORDER BY specialty, location
	`)
	if err != nil {
		return nil, fmt.Errorf("doctors: facets failed: %w", err)
	}
	defer rows.Close()

	facets := &Facets{}
	seenSpecialty := map[string]struct{}{}
	seenLocation := map[string]struct{}{}
	for rows.Next() {
		var specialty, location string
		if err := rows.Scan(&specialty, &location); err != nil {
			return nil, fmt.Errorf("doctors: facets scan failed: %w", err)
		}
		if _, ok := seenSpecialty[specialty]; !ok {
			seenSpecialty[specialty] = struct{}{}
			facets.Specialties = append(facets.Specialties, specialty)
		}
		if _, ok := seenLocation[location]; !ok {
			seenLocation[location] = struct{}{}
			facets.Locations = append(facets.Locations, location)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: facets rows failed: %w", err)
	}
	return facets, nil
}

// ResolveForIdentity maps an authenticated doctor user to their profile row.
// Profiles are linked by user_id; older seed rows predate the link column, so
// a display-name match is kept as a fallback.
func (s *Store) ResolveForIdentity(ctx context.Context, userID int64, displayName string) (*Doctor, error) {
	query := fmt.Sprintf(`SELECT %s FROM doctors WHERE user_id = $1`, doctorColumns)
	doc, err := scanDoctor(s.db.QueryRow(ctx, query, userID))
	if err == nil {
		return doc, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("doctors: resolve failed: %w", err)
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, ErrDoctorNotFound
	}
	query = fmt.Sprintf(`SELECT %s FROM doctors WHERE name ILIKE $1 ORDER BY id LIMIT 1`, doctorColumns)
	doc, err = scanDoctor(s.db.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("doctors: resolve by name failed: %w", err)
	}
	return doc, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var doc Doctor
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Name,
		&doc.Specialty,
		&doc.Experience,
		&doc.Rating,
		&doc.Location,
		&doc.Fees,
		&doc.Available,
		&doc.ImageURL,
		&doc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}

func scanDoctors(rows pgx.Rows) ([]Doctor, error) {
	var out []Doctor
	for rows.Next() {
		doc, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctors: scan failed: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: rows failed: %w", err)
	}
	return out, nil
}
