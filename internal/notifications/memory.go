package notifications

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// InMemoryInbox keeps notifications in memory. Used by tests and local dev.
type InMemoryInbox struct {
	mu     sync.RWMutex
	items  []Notification
	nextID int64
}

// NewInMemoryInbox creates an empty in-memory inbox.
func NewInMemoryInbox() *InMemoryInbox {
	return &InMemoryInbox{nextID: 1}
}

// Create appends an unread notification.
func (m *InMemoryInbox) Create(_ context.Context, req *CreateRequest) (*Notification, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, err
	}
	if req.Payload == nil {
		payload = []byte("{}")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	n := Notification{
		ID:            m.nextID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Message:       req.Message,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
	m.nextID++
	m.items = append(m.items, n)
	return &n, nil
}

// ListForDoctor returns a doctor's notifications, newest first.
func (m *InMemoryInbox) ListForDoctor(_ context.Context, doctorID int64, unreadOnly bool) ([]Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Notification
	for _, n := range m.items {
		if n.DoctorID != doctorID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		n.Payload = sanitizePayload(n.Payload)
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// MarkRead flips a notification to read, scoped to the owning doctor. No
// match is a normal false outcome.
func (m *InMemoryInbox) MarkRead(_ context.Context, doctorID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].DoctorID == doctorID {
			m.items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}
