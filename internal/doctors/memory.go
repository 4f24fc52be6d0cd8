package doctors

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryDirectory keeps doctors in memory. Used by tests and local dev.
type InMemoryDirectory struct {
	mu     sync.RWMutex
	byID   map[int64]Doctor
	nextID int64
}

// NewInMemoryDirectory creates an empty in-memory directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{byID: make(map[int64]Doctor), nextID: 1}
}

// Add inserts a doctor, assigning an id when unset.
func (d *InMemoryDirectory) Add(doc Doctor) Doctor {
	d.mu.Lock()
	defer d.mu.Unlock()
	if doc.ID == 0 {
		doc.ID = d.nextID
	}
	if doc.ID >= d.nextID {
		d.nextID = doc.ID + 1
	}
	d.byID[doc.ID] = doc
	return doc
}

// Search filters available doctors, best-rated first.
func (d *InMemoryDirectory) Search(_ context.Context, filter SearchFilter) ([]Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []Doctor
	for _, doc := range d.byID {
		if !doc.Available {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(doc.Name), q) && !strings.Contains(strings.ToLower(doc.Specialty), q) {
			continue
		}
		if filter.Specialty != "" && doc.Specialty != filter.Specialty {
			continue
		}
		if filter.Location != "" && doc.Location != filter.Location {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		if out[i].Experience != out[j].Experience {
			return out[i].Experience > out[j].Experience
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetByID fetches a doctor by id.
func (d *InMemoryDirectory) GetByID(_ context.Context, id int64) (*Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.byID[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &doc, nil
}

// Facets lists distinct specialties and locations of available doctors.
func (d *InMemoryDirectory) Facets(_ context.Context) (*Facets, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	specialties := map[string]struct{}{}
	locations := map[string]struct{}{}
	for _, doc := range d.byID {
		if !doc.Available {
			continue
		}
		specialties[doc.Specialty] = struct{}{}
		locations[doc.Location] = struct{}{}
	}
	facets := &Facets{}
	for s := range specialties {
		facets.Specialties = append(facets.Specialties, s)
	}
	for l := range locations {
		facets.Locations = append(facets.Locations, l)
	}
	sort.Strings(facets.Specialties)
	sort.Strings(facets.Locations)
	return facets, nil
}

// ResolveForIdentity maps a doctor user to their profile, falling back to a
// case-insensitive display-name match.
func (d *InMemoryDirectory) ResolveForIdentity(_ context.Context, userID int64, displayName string) (*Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, doc := range d.byID {
		if doc.UserID != nil && *doc.UserID == userID {
			copied := doc
			return &copied, nil
		}
	}
	name := strings.ToLower(strings.TrimSpace(displayName))
	if name == "" {
		return nil, ErrDoctorNotFound
	}
	var match *Doctor
	for _, doc := range d.byID {
		if strings.ToLower(doc.Name) == name {
			if match == nil || doc.ID < match.ID {
				copied := doc
				match = &copied
			}
		}
	}
	if match == nil {
		return nil, ErrDoctorNotFound
	}
	return match, nil
}
