package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/internal/identity"
)

func setupHandler(t *testing.T) (*InMemoryInbox, http.Handler) {
	t.Helper()
	dir := doctors.NewInMemoryDirectory()
	userID := int64(7)
	dir.Add(doctors.Doctor{ID: 3, UserID: &userID, Name: "Dr. Mehta", Specialty: "Cardiology", Available: true})

	inbox := NewInMemoryInbox()
	r := chi.NewRouter()
	NewHandler(inbox, dir, nil).RegisterRoutes(r)
	return inbox, r
}

func doctorRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := identity.WithIdentity(context.Background(), identity.Identity{ID: 7, Role: identity.RoleDoctor, Name: "Dr. Mehta"})
	return req.WithContext(ctx)
}

func TestListNotifications(t *testing.T) {
	inbox, router := setupHandler(t)

	for _, msg := range []string{"first", "second", "third"} {
		if _, err := inbox.Create(context.Background(), &CreateRequest{DoctorID: 3, Message: msg}); err != nil {
			t.Fatalf("seed inbox: %v", err)
		}
	}
	if _, err := inbox.MarkRead(context.Background(), 3, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, doctorRequest(http.MethodGet, "/doctor/api/notifications"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Notifications []Notification `json:"notifications"`
		UnreadCount   int            `json:"unread_count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Notifications) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(resp.Notifications))
	}
	if resp.UnreadCount != 2 {
		t.Errorf("expected 2 unread, got %d", resp.UnreadCount)
	}
	if resp.Notifications[0].Message != "third" {
		t.Errorf("expected newest first, got %q", resp.Notifications[0].Message)
	}
}

func TestListNotificationsUnreadOnly(t *testing.T) {
	inbox, router := setupHandler(t)

	if _, err := inbox.Create(context.Background(), &CreateRequest{DoctorID: 3, Message: "a"}); err != nil {
		t.Fatalf("seed inbox: %v", err)
	}
	if _, err := inbox.Create(context.Background(), &CreateRequest{DoctorID: 3, Message: "b"}); err != nil {
		t.Fatalf("seed inbox: %v", err)
	}
	if _, err := inbox.MarkRead(context.Background(), 3, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, doctorRequest(http.MethodGet, "/doctor/api/notifications?unread=1"))

	var resp struct {
		Notifications []Notification `json:"notifications"`
		UnreadCount   int            `json:"unread_count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Notifications) != 1 || resp.Notifications[0].Message != "b" {
		t.Fatalf("unexpected notifications %#v", resp.Notifications)
	}
	if resp.UnreadCount != 1 {
		t.Errorf("expected 1 unread, got %d", resp.UnreadCount)
	}
}

func TestMarkReadEndpoint(t *testing.T) {
	inbox, router := setupHandler(t)

	if _, err := inbox.Create(context.Background(), &CreateRequest{DoctorID: 3, Message: "a"}); err != nil {
		t.Fatalf("seed inbox: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, doctorRequest(http.MethodPost, "/doctor/api/notifications/1/read"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Updated bool `json:"updated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Updated {
		t.Error("expected updated=true")
	}

	items, err := inbox.ListForDoctor(context.Background(), 3, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !items[0].Read {
		t.Error("expected notification marked read")
	}

	// Absence is a normal outcome, not an error status.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, doctorRequest(http.MethodPost, "/doctor/api/notifications/99/read"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown notification, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Updated {
		t.Error("expected updated=false for unknown notification")
	}
}

func TestListNotificationsNoDoctorProfile(t *testing.T) {
	_, router := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/doctor/api/notifications", nil)
	req = req.WithContext(identity.WithIdentity(context.Background(), identity.Identity{ID: 99, Role: identity.RoleDoctor, Name: "Nobody"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user without doctor profile, got %d", rec.Code)
	}
}

func TestMarkReadOtherDoctorsNotification(t *testing.T) {
	inbox, router := setupHandler(t)

	if _, err := inbox.Create(context.Background(), &CreateRequest{DoctorID: 4, Message: "not yours"}); err != nil {
		t.Fatalf("seed inbox: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, doctorRequest(http.MethodPost, "/doctor/api/notifications/1/read"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for another doctor's notification, got %d", rec.Code)
	}
	var resp struct {
		Updated bool `json:"updated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Updated {
		t.Error("expected updated=false for another doctor's notification")
	}

	items, err := inbox.ListForDoctor(context.Background(), 4, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].Read {
		t.Error("another doctor's notification must stay unread")
	}
}
