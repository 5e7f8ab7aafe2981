package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitValidation(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Init(0))
	assert.NoError(t, s.Init(3))
}

func TestUpsertValidation(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert([]string{"a"}, nil))
	assert.Error(t, s.Upsert([]string{"a"}, [][]float64{{1, 0, 0}}))
	assert.NoError(t, s.Upsert([]string{"a"}, [][]float64{{1, 0}}))
}

func TestSearchOrdersByScore(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]string{"x", "y", "z"},
		[][]float64{{1, 0}, {0, 1}, {0.6, 0.8}},
	))

	results, err := s.Search([]float64{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "y", results[0].ID)
	assert.Equal(t, "z", results[1].ID)
	assert.Equal(t, 1.0, results[0].Score)
}

func TestSearchClampsScores(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]string{"neg"}, [][]float64{{-1, 0}}))

	results, err := s.Search([]float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
}

func TestClearKeepsDimension(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]string{"a"}, [][]float64{{1, 0}}))
	require.NoError(t, s.Clear())

	results, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, s.Upsert([]string{"b"}, [][]float64{{0, 1}}))
}
