package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id int64 }

func TestSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Size())
	assert.Equal(t, 7, Pagination{PageSize: 7}.Size())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 1000}.Size())
}

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: 42})
	require.NoError(t, err)

	got, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestBuildCursorPageInfo(t *testing.T) {
	rows := []*row{{1}, {2}, {3}}
	id := func(r *row) int64 { return r.id }

	page, info := BuildCursorPageInfo(rows, 3, id)
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	page, info = BuildCursorPageInfo(rows, 2, id)
	assert.Len(t, page, 2)
	assert.True(t, info.HasMore)

	cursor, err := DecodeCursor(info.NextPageToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cursor.ID)
}
