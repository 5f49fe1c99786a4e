package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 30, 0, 123456000, time.UTC)

	encoded := EncodeCursor("doc-42", ts)
	require.NotEmpty(t, encoded)

	cursor, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, "doc-42", cursor.LastID)
	assert.True(t, ts.Equal(cursor.Timestamp))
}

func TestDecodeCursor(t *testing.T) {
	t.Run("empty cursor decodes to nil", func(t *testing.T) {
		cursor, err := DecodeCursor("")
		require.NoError(t, err)
		assert.Nil(t, cursor)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := DecodeCursor("not-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := DecodeCursor("aGVsbG8=")
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, err := DecodeCursor("aWR8bm90LWEtdGltZQ==")
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})
}

func TestEncodeCursor_EmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}
