package doctors

import "time"

// Doctor is a bookable practitioner profile.
type Doctor struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id,omitempty"`
	Name       string    `json:"name"`
	Specialty  string    `json:"specialty"`
	Experience int       `json:"experience"`
	Rating     float64   `json:"rating"`
	Location   string    `json:"location"`
	Fees       int64     `json:"fees"`
	Available  bool      `json:"available"`
	ImageURL   string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SearchFilter narrows the doctor directory listing. Empty fields match
// everything; only available doctors are ever returned.
type SearchFilter struct {
	Query     string
	Specialty string
	Location  string
}

// Facets lists the distinct values the directory UI offers as filters.
type Facets struct {
	Specialties []string `json:"specialties"`
	Locations   []string `json:"locations"`
}
