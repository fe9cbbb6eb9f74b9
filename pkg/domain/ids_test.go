package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nexolend/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseProfileID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseFlagID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseUserID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(valid), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety between
// entity IDs. If this compiles, the invariant holds; the runtime check simply
// documents it.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	profileID := ProfileID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = profileID   // compile error
	// var _ ProfileID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(profileID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, UserID(uuid.New()).IsNil())
	assert.False(t, NewEventID().IsNil())
	assert.False(t, NewFlagID().IsNil())
}
