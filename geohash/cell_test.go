package geohash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("  9Q5CTR1 ")
	require.NoError(t, err)
	assert.Equal(t, "9q5ctr1", got)

	got, err = Normalize("dr5regw3ppyz")
	require.NoError(t, err)
	assert.Equal(t, "dr5regw3ppyz", got)

	for _, bad := range []string{"", "   ", "9q5a", "ilo", "9q5-ctr", "9q5ctr186n4v5"} {
		_, err := Normalize(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, "input %q", bad)
	}
}

func TestBoundsContainsEncodedPoint(t *testing.T) {
	for _, p := range samplePoints {
		hash, err := Encode(p.lat, p.lng, 7)
		require.NoError(t, err)

		box, err := Bounds(hash)
		require.NoError(t, err)
		assert.True(t, box.Contains(p.lat, p.lng), "%s not inside %+v", p.name, box)
		assert.Less(t, box.MinLat, box.MaxLat)
		assert.Less(t, box.MinLng, box.MaxLng)
	}
}

func TestCenterRoundTrip(t *testing.T) {
	lat, lng, err := Center("9q5ctr1")
	require.NoError(t, err)
	assert.InDelta(t, 34.0522, lat, 0.001)
	assert.InDelta(t, -118.2437, lng, 0.001)

	again, err := Encode(lat, lng, 7)
	require.NoError(t, err)
	assert.Equal(t, "9q5ctr1", again)

	_, _, err = Center("9q5a")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNeighbors(t *testing.T) {
	neighbors, err := Neighbors("9q5ct")
	require.NoError(t, err)
	require.Len(t, neighbors, 8)

	seen := map[string]bool{}
	for _, n := range neighbors {
		assert.Len(t, n, 5)
		assert.NotEqual(t, "9q5ct", n)
		seen[n] = true
	}
	assert.Len(t, seen, 8)

	// The northern neighbor sits directly above the cell.
	box, err := Bounds("9q5ct")
	require.NoError(t, err)
	north, err := Bounds(neighbors[0])
	require.NoError(t, err)
	assert.InDelta(t, box.MaxLat, north.MinLat, 1e-9)
	assert.InDelta(t, box.MinLng, north.MinLng, 1e-9)

	_, err = Neighbors("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCellHelpersRejectLongHashes(t *testing.T) {
	hash, err := Encode(34.0522, -118.2437, MaxCellPrecision+1)
	require.NoError(t, err)

	_, err = Bounds(hash)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = Center(hash)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Neighbors(hash)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Cells(hash)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	lat, lng, err := Center(hash[:MaxCellPrecision])
	require.NoError(t, err)
	assert.InDelta(t, 34.0522, lat, 0.0001)
	assert.InDelta(t, -118.2437, lng, 0.0001)
}

func TestCells(t *testing.T) {
	cells, err := Cells("9Q5CT")
	require.NoError(t, err)
	require.Len(t, cells, 9)
	assert.Equal(t, "9q5ct", cells[0])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "9q5ct", Truncate("9q5ctr1", 5))
	assert.Equal(t, "9q5", Truncate("9q5", 5))
	assert.Equal(t, "9q5ctr1", Truncate("9q5ctr1", 0))
}
