package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "roster/pkg/domain-errors"
)

func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAffiliateID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

func TestParseNumericIDs(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"1", false},
		{" 42 ", false},
		{"0", true},
		{"-3", true},
		{"abc", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParsePlaceID(tt.in)
			if tt.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			_, err = ParseRoleID(tt.in)
			require.NoError(t, err)
		})
	}
}

func TestParseDPIAndPhone(t *testing.T) {
	dpi, err := ParseDPI(" 1234567890123 ")
	require.NoError(t, err)
	assert.Equal(t, DPI("1234567890123"), dpi)

	for _, bad := range []string{"", "123456789012", "12345678901234", "12345678901a3"} {
		_, err := ParseDPI(bad)
		assert.Error(t, err, bad)
	}

	phone, err := ParsePhone("55512345")
	require.NoError(t, err)
	assert.Equal(t, "55512345", phone.String())

	for _, bad := range []string{"5551234", "555123456", "5551234x"} {
		_, err := ParsePhone(bad)
		assert.Error(t, err, bad)
	}
}

func TestIDsEncodeAsStrings(t *testing.T) {
	uid := NewUserID()
	raw, err := json.Marshal(map[string]any{"id": uid})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+uid.String()+`"}`, string(raw))

	var back struct {
		ID AffiliateID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, uid.String(), back.ID.String())

	assert.Error(t, json.Unmarshal([]byte(`{"id":"nope"}`), &back))
}
