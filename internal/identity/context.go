package identity

import "context"

// Roles recognized by the session layer.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Identity describes the authenticated caller of a request.
type Identity struct {
	ID   int64
	Role string
	Name string
}

// IsDoctor reports whether the identity carries the doctor role.
func (i Identity) IsDoctor() bool {
	return i.Role == RoleDoctor
}

type ctxKey string

const identityKey ctxKey = "docconnect.identity"

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext extracts the caller identity if present.
func FromContext(ctx context.Context) (Identity, bool) {
	val := ctx.Value(identityKey)
	if val == nil {
		return Identity{}, false
	}
	ident, ok := val.(Identity)
	return ident, ok && ident.ID != 0
}
