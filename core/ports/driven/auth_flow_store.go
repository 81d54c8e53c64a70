package driven

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/authflow-core/core/domain"
	"github.com/google/uuid"
)

// Session is a caller-owned database handle: either a plain connection pool
// or an open transaction. Both *sql.DB and *sql.Tx satisfy it. Stores stage
// their writes on the session and never commit or roll back; the transaction
// boundary belongs entirely to the caller.
type Session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DefaultListLimit is the page size used when a list query leaves Limit unset.
const DefaultListLimit = 50

// ListByNameQuery selects a page of flows sharing a name.
// Active filters three ways: nil = no filter, true = only active,
// false = only inactive.
type ListByNameQuery struct {
	Name   string
	Active *bool
	Limit  int // defaults to DefaultListLimit
	Offset int
}

// AuthFlowStore persists auth flow rows. Every method borrows the caller's
// session for exactly one round trip; a lookup miss is a nil result, not an
// error. Database failures propagate wrapped but untranslated.
type AuthFlowStore interface {
	// Insert stages a new row and fills in the identity and timestamps the
	// database assigns. Durability depends on the caller's later commit.
	// Duplicate names are permitted; rows sharing a name are versions.
	Insert(ctx context.Context, sess Session, flow *domain.AuthFlow) error

	// GetByID returns the matching flow, or nil when no row has the id.
	GetByID(ctx context.Context, sess Session, id uuid.UUID) (*domain.AuthFlow, error)

	// FindFirstByName returns the first flow matching an exact name,
	// optionally filtered by the active flag (nil = no filter).
	FindFirstByName(ctx context.Context, sess Session, name string, active *bool) (*domain.AuthFlow, error)

	// ListByName returns an ordered page of flows matching the query.
	// The result is empty, never nil-for-missing, when nothing matches.
	ListByName(ctx context.Context, sess Session, q ListByNameQuery) ([]*domain.AuthFlow, error)

	// SetActive flips the active flag on exactly one row and returns the
	// updated flow, or nil when the id does not resolve. Sibling rows with
	// the same name are untouched.
	SetActive(ctx context.Context, sess Session, id uuid.UUID, active bool) (*domain.AuthFlow, error)

	// Update applies a partial update to one row, re-validating the result
	// before staging it. Returns the updated flow, or nil when the id does
	// not resolve.
	Update(ctx context.Context, sess Session, id uuid.UUID, update domain.AuthFlowUpdate) (*domain.AuthFlow, error)
}
