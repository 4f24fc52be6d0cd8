package doctors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

var doctorCols = []string{"id", "user_id", "name", "specialty", "experience", "rating", "location", "fees", "available", "image_url", "created_at"}

func doctorRow(mock pgxmock.PgxPoolIface, id int64, userID *int64, name, specialty string) *pgxmock.Rows {
	return pgxmock.NewRows(doctorCols).
		AddRow(id, userID, name, specialty, 8, 4.5, "Mumbai", int64(500), true, "", time.Now())
}

func TestStoreSearch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM doctors`).
		WithArgs("%heart%", "Cardiology").
		WillReturnRows(doctorRow(mock, 1, nil, "Dr. Anil Kapoor", "Cardiology"))

	store := NewStore(mock)
	docs, err := store.Search(context.Background(), SearchFilter{Query: "heart", Specialty: "Cardiology"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "Dr. Anil Kapoor" {
		t.Fatalf("unexpected docs %#v", docs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM doctors WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(doctorCols))

	store := NewStore(mock)
	_, err = store.GetByID(context.Background(), 99)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestStoreFacets(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT DISTINCT specialty, location`).
		WillReturnRows(pgxmock.NewRows([]string{"specialty", "location"}).
			AddRow("Cardiology", "Delhi").
			AddRow("Cardiology", "Mumbai").
			AddRow("Dermatology", "Delhi"))

	store := NewStore(mock)
	facets, err := store.Facets(context.Background())
	if err != nil {
		t.Fatalf("Facets failed: %v", err)
	}
	if len(facets.Specialties) != 2 {
		t.Errorf("Specialties = %v, want 2 entries", facets.Specialties)
	}
	if len(facets.Locations) != 2 {
		t.Errorf("Locations = %v, want 2 entries", facets.Locations)
	}
}

func TestStoreResolveForIdentityFallsBackToName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM doctors WHERE user_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(doctorCols))
	mock.ExpectQuery(`SELECT .* FROM doctors WHERE name ILIKE \$1`).
		WithArgs("Dr. Anil Kapoor").
		WillReturnRows(doctorRow(mock, 3, nil, "Dr. Anil Kapoor", "Cardiology"))

	store := NewStore(mock)
	doc, err := store.ResolveForIdentity(context.Background(), 7, "Dr. Anil Kapoor")
	if err != nil {
		t.Fatalf("ResolveForIdentity failed: %v", err)
	}
	if doc.ID != 3 {
		t.Fatalf("expected doctor 3, got %d", doc.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
