package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestStoreCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(3), (*int64)(nil), "New appointment from Asha at 10:00 on 2026-09-14", []byte(`{"appointment_id":12}`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	store := NewStore(mock)
	n, err := store.Create(context.Background(), &CreateRequest{
		DoctorID: 3,
		Message:  "New appointment from Asha at 10:00 on 2026-09-14",
		Payload:  map[string]int64{"appointment_id": 12},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n.ID != 1 || n.DoctorID != 3 {
		t.Fatalf("unexpected notification %+v", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreListSanitizesPayload(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	cols := []string{"id", "doctor_id", "appointment_id", "message", "payload", "read", "created_at"}
	mock.ExpectQuery(`(?s)SELECT .* FROM notifications`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(2), int64(3), (*int64)(nil), "second", []byte(`not-json`), false, time.Now()).
			AddRow(int64(1), int64(3), (*int64)(nil), "first", []byte(`{"a":1}`), true, time.Now().Add(-time.Minute)))

	store := NewStore(mock)
	items, err := store.ListForDoctor(context.Background(), 3, false)
	if err != nil {
		t.Fatalf("ListForDoctor failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(items))
	}
	if string(items[0].Payload) != "{}" {
		t.Errorf("malformed payload should collapse to empty object, got %s", items[0].Payload)
	}
	if string(items[1].Payload) != `{"a":1}` {
		t.Errorf("valid payload should pass through, got %s", items[1].Payload)
	}
}

func TestStoreMarkReadNoMatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`(?s)UPDATE notifications SET read = TRUE`).
		WithArgs(int64(9), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStore(mock)
	updated, err := store.MarkRead(context.Background(), 3, 9)
	if err != nil {
		t.Fatalf("no-match mark read must not error: %v", err)
	}
	if updated {
		t.Error("expected updated=false when no row matches")
	}
}
