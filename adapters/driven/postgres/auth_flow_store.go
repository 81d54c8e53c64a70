package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/authflow-core/core/domain"
	"github.com/custodia-labs/authflow-core/core/ports/driven"
	"github.com/google/uuid"
)

// Ensure AuthFlowStore implements the interface.
var _ driven.AuthFlowStore = (*AuthFlowStore)(nil)

// authFlowColumns is the canonical column list; every read and RETURNING
// clause uses it so scanAuthFlow stays in sync.
const authFlowColumns = `id, created_at, updated_at, created_by, is_active,
	name, issuer_type, identity_provider, response_type, scope,
	client_id, redirect_uri, authorize_url, token_url, client_secret_enc,
	idp_prefix, timeout_seconds, cdp_endpoint, cdp_headers, cdp_gui_base_url,
	browserless_base_url`

// AuthFlowStore implements driven.AuthFlowStore using PostgreSQL. It holds
// no connection of its own: every call borrows the caller's session and
// performs one round trip. Client secrets are encrypted before they reach
// the database and decrypted on the way out.
type AuthFlowStore struct {
	encryptor *SecretEncryptor
}

// NewAuthFlowStore creates a new PostgreSQL-backed auth flow store.
// The encryptor must not be nil; secrets are never stored in plaintext.
func NewAuthFlowStore(encryptor *SecretEncryptor) *AuthFlowStore {
	return &AuthFlowStore{encryptor: encryptor}
}

// Insert stages a new row. The database assigns id and timestamps, returned
// through the RETURNING clause; durability depends on the caller's commit.
func (s *AuthFlowStore) Insert(ctx context.Context, sess driven.Session, flow *domain.AuthFlow) error {
	if err := flow.Validate(); err != nil {
		return err
	}

	secretBlob, err := s.encryptSecret(flow.ClientSecret)
	if err != nil {
		return fmt.Errorf("encrypt client secret: %w", err)
	}
	headers, err := marshalHeaders(flow.CDPHeaders)
	if err != nil {
		return fmt.Errorf("marshal cdp headers: %w", err)
	}

	query := `
		INSERT INTO auth_flows (
			created_by, is_active,
			name, issuer_type, identity_provider, response_type, scope,
			client_id, redirect_uri, authorize_url, token_url, client_secret_enc,
			idp_prefix, timeout_seconds, cdp_endpoint, cdp_headers,
			cdp_gui_base_url, browserless_base_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`

	err = sess.QueryRowContext(ctx, query,
		nullUUID(flow.CreatedBy),
		flow.IsActive,
		flow.Name,
		string(flow.IssuerType),
		flow.IdentityProvider,
		flow.ResponseType,
		flow.Scope,
		flow.ClientID,
		flow.RedirectURI,
		flow.AuthorizeURL,
		flow.TokenURL,
		secretBlob,
		flow.IDPPrefix,
		flow.Timeout,
		flow.CDPEndpoint,
		headers,
		NullString(flow.CDPGUIBaseURL),
		flow.BrowserlessBaseURL,
	).Scan(&flow.ID, &flow.CreatedAt, &flow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert auth flow: %w", err)
	}

	return nil
}

// GetByID retrieves a flow by id, or nil when no row matches.
func (s *AuthFlowStore) GetByID(ctx context.Context, sess driven.Session, id uuid.UUID) (*domain.AuthFlow, error) {
	query := `SELECT ` + authFlowColumns + ` FROM auth_flows WHERE id = $1`

	flow, err := s.scanAuthFlow(sess.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found returns nil, not error
	}
	if err != nil {
		return nil, fmt.Errorf("get auth flow: %w", err)
	}
	return flow, nil
}

// FindFirstByName returns the first flow matching the exact name, optionally
// filtered by active flag (nil = no filter). Rows are ordered by creation
// time so the oldest version wins ties.
func (s *AuthFlowStore) FindFirstByName(ctx context.Context, sess driven.Session, name string, active *bool) (*domain.AuthFlow, error) {
	query := `SELECT ` + authFlowColumns + ` FROM auth_flows WHERE name = $1`
	args := []any{name}
	query, args = appendActiveFilter(query, args, active)
	query += ` ORDER BY created_at, id LIMIT 1`

	flow, err := s.scanAuthFlow(sess.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find auth flow by name: %w", err)
	}
	return flow, nil
}

// ListByName returns a page of flows matching the query, ordered by creation
// time. The result is empty, never nil, when nothing matches.
func (s *AuthFlowStore) ListByName(ctx context.Context, sess driven.Session, q driven.ListByNameQuery) ([]*domain.AuthFlow, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = driven.DefaultListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + authFlowColumns + ` FROM auth_flows WHERE name = $1`
	args := []any{q.Name}
	query, args = appendActiveFilter(query, args, q.Active)
	query += fmt.Sprintf(` ORDER BY created_at, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := sess.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list auth flows: %w", err)
	}
	defer rows.Close()

	flows := make([]*domain.AuthFlow, 0)
	for rows.Next() {
		flow, err := s.scanAuthFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auth flow: %w", err)
		}
		flows = append(flows, flow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list auth flows: %w", err)
	}

	return flows, nil
}

// SetActive flips is_active on exactly one row and returns the updated flow,
// or nil when the id does not resolve. Sibling rows sharing the name are
// never touched.
func (s *AuthFlowStore) SetActive(ctx context.Context, sess driven.Session, id uuid.UUID, active bool) (*domain.AuthFlow, error) {
	query := `
		UPDATE auth_flows
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + authFlowColumns

	flow, err := s.scanAuthFlow(sess.QueryRowContext(ctx, query, id, active))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set auth flow active: %w", err)
	}
	return flow, nil
}

// Update loads the row, applies the partial update in memory, re-validates
// and stages the result. Returns nil when the id does not resolve; on a
// validation failure nothing is staged.
func (s *AuthFlowStore) Update(ctx context.Context, sess driven.Session, id uuid.UUID, update domain.AuthFlowUpdate) (*domain.AuthFlow, error) {
	flow, err := s.GetByID(ctx, sess, id)
	if err != nil || flow == nil {
		return flow, err
	}

	if err := flow.Apply(update); err != nil {
		return nil, err
	}

	secretBlob, err := s.encryptSecret(flow.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("encrypt client secret: %w", err)
	}
	headers, err := marshalHeaders(flow.CDPHeaders)
	if err != nil {
		return nil, fmt.Errorf("marshal cdp headers: %w", err)
	}

	query := `
		UPDATE auth_flows
		SET name = $2, issuer_type = $3, identity_provider = $4,
			response_type = $5, scope = $6, client_id = $7, redirect_uri = $8,
			authorize_url = $9, token_url = $10, client_secret_enc = $11,
			idp_prefix = $12, timeout_seconds = $13, cdp_endpoint = $14,
			cdp_headers = $15, cdp_gui_base_url = $16,
			browserless_base_url = $17, is_active = $18, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err = sess.QueryRowContext(ctx, query,
		flow.ID,
		flow.Name,
		string(flow.IssuerType),
		flow.IdentityProvider,
		flow.ResponseType,
		flow.Scope,
		flow.ClientID,
		flow.RedirectURI,
		flow.AuthorizeURL,
		flow.TokenURL,
		secretBlob,
		flow.IDPPrefix,
		flow.Timeout,
		flow.CDPEndpoint,
		headers,
		NullString(flow.CDPGUIBaseURL),
		flow.BrowserlessBaseURL,
		flow.IsActive,
	).Scan(&flow.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update auth flow: %w", err)
	}

	return flow, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAuthFlow reads one row in authFlowColumns order and decrypts the
// client secret. Returns sql.ErrNoRows unchanged so callers can map it to
// an absent result.
func (s *AuthFlowStore) scanAuthFlow(row rowScanner) (*domain.AuthFlow, error) {
	var (
		flow       domain.AuthFlow
		issuerType string
		createdBy  uuid.NullUUID
		secretBlob []byte
		headersRaw []byte
		guiBaseURL sql.NullString
	)

	err := row.Scan(
		&flow.ID,
		&flow.CreatedAt,
		&flow.UpdatedAt,
		&createdBy,
		&flow.IsActive,
		&flow.Name,
		&issuerType,
		&flow.IdentityProvider,
		&flow.ResponseType,
		&flow.Scope,
		&flow.ClientID,
		&flow.RedirectURI,
		&flow.AuthorizeURL,
		&flow.TokenURL,
		&secretBlob,
		&flow.IDPPrefix,
		&flow.Timeout,
		&flow.CDPEndpoint,
		&headersRaw,
		&guiBaseURL,
		&flow.BrowserlessBaseURL,
	)
	if err != nil {
		return nil, err
	}

	flow.IssuerType = domain.TokenIssuerType(issuerType)
	if createdBy.Valid {
		flow.CreatedBy = &createdBy.UUID
	}
	flow.CDPGUIBaseURL = guiBaseURL.String

	flow.ClientSecret, err = s.decryptSecret(secretBlob)
	if err != nil {
		return nil, fmt.Errorf("decrypt client secret: %w", err)
	}

	flow.CDPHeaders, err = unmarshalHeaders(headersRaw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal cdp headers: %w", err)
	}

	return &flow, nil
}

// encryptSecret maps an empty secret to a NULL column.
func (s *AuthFlowStore) encryptSecret(secret domain.Secret) ([]byte, error) {
	if !secret.IsSet() {
		return nil, nil
	}
	return s.encryptor.Encrypt(secret.Reveal())
}

// decryptSecret maps a NULL column back to an empty secret.
func (s *AuthFlowStore) decryptSecret(blob []byte) (domain.Secret, error) {
	if len(blob) == 0 {
		return "", nil
	}
	plaintext, err := s.encryptor.Decrypt(blob)
	if err != nil {
		return "", err
	}
	return domain.Secret(plaintext), nil
}

// marshalHeaders maps an absent header set to a NULL jsonb column.
func marshalHeaders(headers map[string]string) ([]byte, error) {
	if headers == nil {
		return nil, nil
	}
	return json.Marshal(headers)
}

func unmarshalHeaders(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var headers map[string]string
	if err := json.Unmarshal(raw, &headers); err != nil {
		return nil, err
	}
	return headers, nil
}

// appendActiveFilter appends the three-valued is_active predicate:
// nil = no filter, true = only active, false = only inactive.
func appendActiveFilter(query string, args []any, active *bool) (string, []any) {
	if active == nil {
		return query, args
	}
	query += fmt.Sprintf(" AND is_active = $%d", len(args)+1)
	return query, append(args, *active)
}

// nullUUID converts an optional uuid to its nullable column form.
func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
