package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/authflow-core/core/domain"
	"github.com/custodia-labs/authflow-core/core/ports/driven"
	"github.com/custodia-labs/authflow-core/core/ports/driving"
	"github.com/google/uuid"
)

// Ensure authFlowService implements AuthFlowService
var _ driving.AuthFlowService = (*authFlowService)(nil)

// authFlowService implements the AuthFlowService interface. It is stateless:
// every call borrows the caller's session and stages at most one mutation.
type authFlowService struct {
	store  driven.AuthFlowStore
	logger *slog.Logger
}

// NewAuthFlowService creates a new AuthFlowService. A nil logger falls back
// to slog.Default().
func NewAuthFlowService(store driven.AuthFlowStore, logger *slog.Logger) driving.AuthFlowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authFlowService{
		store:  store,
		logger: logger,
	}
}

// Create validates the spec, stages the new row and returns it.
func (s *authFlowService) Create(ctx context.Context, sess driven.Session, spec domain.AuthFlowSpec) (*domain.AuthFlow, error) {
	flow, err := domain.NewAuthFlow(spec)
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, sess, flow); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "auth flow created",
		"id", flow.ID,
		"name", flow.Name,
		"issuer_type", flow.IssuerType,
		"identity_provider", flow.IdentityProvider,
		"is_active", flow.IsActive,
	)
	return flow, nil
}

// GetByID returns the flow or nil when it does not exist.
func (s *authFlowService) GetByID(ctx context.Context, sess driven.Session, id uuid.UUID) (*domain.AuthFlow, error) {
	return s.store.GetByID(ctx, sess, id)
}

// GetByNameFirst returns the first flow matching the name and active filter.
func (s *authFlowService) GetByNameFirst(ctx context.Context, sess driven.Session, name string, active *bool) (*domain.AuthFlow, error) {
	return s.store.FindFirstByName(ctx, sess, name, active)
}

// ListByName returns a page of flow versions sharing a name.
func (s *authFlowService) ListByName(ctx context.Context, sess driven.Session, q driven.ListByNameQuery) ([]*domain.AuthFlow, error) {
	return s.store.ListByName(ctx, sess, q)
}

// SetActive toggles one flow's active flag, touching no sibling rows.
func (s *authFlowService) SetActive(ctx context.Context, sess driven.Session, id uuid.UUID, active bool) (*domain.AuthFlow, error) {
	flow, err := s.store.SetActive(ctx, sess, id, active)
	if err != nil || flow == nil {
		return flow, err
	}

	s.logger.InfoContext(ctx, "auth flow active flag changed",
		"id", flow.ID,
		"name", flow.Name,
		"is_active", flow.IsActive,
	)
	return flow, nil
}

// Update applies a partial update and returns the updated flow.
func (s *authFlowService) Update(ctx context.Context, sess driven.Session, id uuid.UUID, update domain.AuthFlowUpdate) (*domain.AuthFlow, error) {
	flow, err := s.store.Update(ctx, sess, id, update)
	if err != nil || flow == nil {
		return flow, err
	}

	s.logger.InfoContext(ctx, "auth flow updated",
		"id", flow.ID,
		"name", flow.Name,
	)
	return flow, nil
}
