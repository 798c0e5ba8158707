package docstore

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectID_HexRoundTrip(t *testing.T) {
	id := NewObjectID()
	hex := id.Hex()

	assert.Len(t, hex, 24)
	assert.Equal(t, strings.ToLower(hex), hex)

	parsed, err := ParseObjectID(hex)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.False(t, parsed.IsZero())
}

func TestObjectID_UpperCaseAccepted(t *testing.T) {
	id := NewObjectID()

	parsed, err := ParseObjectID(strings.ToUpper(id.Hex()))
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseObjectID_Invalid(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"not-a-valid-object-id!!",
		"zzzzzzzzzzzzzzzzzzzzzzzz",
		"65f1c0ffee65f1c0ffee65f1c0",
		" 65f1c0ffee65f1c0ffee65f",
	}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			id, err := ParseObjectID(raw)
			assert.ErrorIs(t, err, ErrInvalidID)
			assert.True(t, id.IsZero())
		})
	}
}

func TestObjectID_Unique(t *testing.T) {
	seen := make(map[ObjectID]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewObjectID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestObjectID_Timestamp(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := newObjectIDAt(at)
	assert.Equal(t, at, id.Timestamp())
}
