package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/models"
)

func TestNewColumnStore(t *testing.T) {
	store, err := NewColumnStore(sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 6, store.Len())
	assert.Equal(t, sampleRows()[0], store.Row(0))
}

func TestNewColumnStoreRejectsHourOutOfRange(t *testing.T) {
	for _, hour := range []int{-8, 24, 127} {
		rows := sampleRows()
		rows[2].Hour = hour

		store, err := NewColumnStore(rows)
		require.ErrorIs(t, err, ErrMalformedRow, "hour %d", hour)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "row 2")
	}

	assert.Panics(t, func() {
		MustColumnStore([]models.Row{{City: "A", CustomerType: "Member", Gender: "Male", ProductLine: "Food", Hour: 24}})
	})
}
