package driving

import (
	"context"

	"github.com/custodia-labs/authflow-core/core/domain"
	"github.com/custodia-labs/authflow-core/core/ports/driven"
	"github.com/google/uuid"
)

// AuthFlowService manages versioned auth flow configurations. This is the
// surface the surrounding service consumes; it validates input before any
// persistence interaction and keeps secrets out of its logs.
//
// All input travels in named-field structs (domain.AuthFlowSpec,
// domain.AuthFlowUpdate) rather than positional parameters - with this many
// string-typed fields, positional calls would invite silent field swaps.
type AuthFlowService interface {
	// Create validates and stages a new flow version. The returned flow has
	// its identity and timestamps filled in, but durability depends on the
	// caller committing the session.
	Create(ctx context.Context, sess driven.Session, spec domain.AuthFlowSpec) (*domain.AuthFlow, error)

	// GetByID returns the flow, or nil when the id does not resolve.
	GetByID(ctx context.Context, sess driven.Session, id uuid.UUID) (*domain.AuthFlow, error)

	// GetByNameFirst returns the first flow with the exact name, optionally
	// filtered by active flag (nil = no filter), or nil when none match.
	GetByNameFirst(ctx context.Context, sess driven.Session, name string, active *bool) (*domain.AuthFlow, error)

	// ListByName returns a page of flow versions sharing a name.
	ListByName(ctx context.Context, sess driven.Session, q driven.ListByNameQuery) ([]*domain.AuthFlow, error)

	// SetActive toggles one flow's active flag. Callers wanting exactly one
	// active version per name must deactivate siblings themselves.
	SetActive(ctx context.Context, sess driven.Session, id uuid.UUID, active bool) (*domain.AuthFlow, error)

	// Update applies a partial update; absent fields stay unchanged.
	Update(ctx context.Context, sess driven.Session, id uuid.UUID, update domain.AuthFlowUpdate) (*domain.AuthFlow, error)
}
