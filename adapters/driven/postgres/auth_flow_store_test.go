package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/authflow-core/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *AuthFlowStore {
	t.Helper()
	enc, err := NewSecretEncryptor([]byte("01234567890123456789012345678901"))
	require.NoError(t, err)
	return NewAuthFlowStore(enc)
}

func TestAppendActiveFilter(t *testing.T) {
	base := `SELECT 1 FROM auth_flows WHERE name = $1`
	baseArgs := []any{"x"}

	t.Run("nil means no filter", func(t *testing.T) {
		query, args := appendActiveFilter(base, baseArgs, nil)
		assert.Equal(t, base, query)
		assert.Equal(t, baseArgs, args)
	})

	t.Run("true filters active", func(t *testing.T) {
		active := true
		query, args := appendActiveFilter(base, baseArgs, &active)
		assert.True(t, strings.HasSuffix(query, " AND is_active = $2"))
		assert.Equal(t, []any{"x", true}, args)
	})

	t.Run("false filters inactive", func(t *testing.T) {
		active := false
		query, args := appendActiveFilter(base, baseArgs, &active)
		assert.True(t, strings.HasSuffix(query, " AND is_active = $2"))
		assert.Equal(t, []any{"x", false}, args)
	})
}

func TestSecretColumnMapping(t *testing.T) {
	store := newTestStore(t)

	t.Run("empty secret stays NULL", func(t *testing.T) {
		blob, err := store.encryptSecret("")
		require.NoError(t, err)
		assert.Nil(t, blob)

		secret, err := store.decryptSecret(nil)
		require.NoError(t, err)
		assert.False(t, secret.IsSet())
	})

	t.Run("set secret round-trips encrypted", func(t *testing.T) {
		blob, err := store.encryptSecret("confidential")
		require.NoError(t, err)
		require.NotNil(t, blob)
		assert.NotContains(t, string(blob), "confidential")

		secret, err := store.decryptSecret(blob)
		require.NoError(t, err)
		assert.Equal(t, "confidential", secret.Reveal())
	})
}

func TestHeaderColumnMapping(t *testing.T) {
	t.Run("nil headers stay NULL", func(t *testing.T) {
		raw, err := marshalHeaders(nil)
		require.NoError(t, err)
		assert.Nil(t, raw)

		headers, err := unmarshalHeaders(nil)
		require.NoError(t, err)
		assert.Nil(t, headers)
	})

	t.Run("headers round-trip as JSON", func(t *testing.T) {
		in := map[string]string{"Authorization": "Bearer abc", "X-Env": "staging"}
		raw, err := marshalHeaders(in)
		require.NoError(t, err)

		out, err := unmarshalHeaders(raw)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestNullUUID(t *testing.T) {
	assert.False(t, nullUUID(nil).Valid)

	id := uuid.New()
	nu := nullUUID(&id)
	assert.True(t, nu.Valid)
	assert.Equal(t, id, nu.UUID)
}

// The insert path validates before touching the session, so a bad entity
// never reaches the database - exercised here with a nil session.
func TestAuthFlowStore_Insert_ValidatesFirst(t *testing.T) {
	store := newTestStore(t)

	flow := &domain.AuthFlow{
		Name:       "broken",
		IssuerType: domain.IssuerTypeStandard, // no secret
	}

	err := store.Insert(context.Background(), nil, flow)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
