package geohash

import (
	"math"
	"strings"
	"sync"
	"testing"

	mmgeohash "github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePoints = []struct {
	name     string
	lat, lng float64
}{
	{"los angeles", 34.0522, -118.2437},
	{"new york", 40.7128, -74.0060},
	{"sydney", -33.8688, 151.2093},
	{"paris", 48.8566, 2.3522},
	{"tokyo", 35.6762, 139.6503},
	{"amsterdam", 52.374081, 4.912350},
	{"aalborg", 57.64911, 10.40744},
}

func TestEncodeKnownVectors(t *testing.T) {
	tests := []struct {
		lat, lng  float64
		precision int
		want      string
	}{
		{34.0522, -118.2437, 7, "9q5ctr1"},
		{40.7128, -74.0060, 12, "dr5regw3ppyz"},
		{-33.8688, 151.2093, 9, "r3gx2f77b"},
		{48.8566, 2.3522, 8, "u09tvw0f"},
		{35.6762, 139.6503, 6, "xn76cy"},
		{52.374081, 4.912350, 3, "u17"},
		{57.64911, 10.40744, 11, "u4pruydqqvj"},
		{-90, -180, 5, "00000"},
		{90, 180, 5, "zzzzz"},
	}

	for _, tt := range tests {
		got, err := Encode(tt.lat, tt.lng, tt.precision)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Encode(%v, %v, %d)", tt.lat, tt.lng, tt.precision)
	}
}

func TestEncodeDefault(t *testing.T) {
	got, err := EncodeDefault(34.0522, -118.2437)
	require.NoError(t, err)
	assert.Equal(t, "9q5ctr1", got)
	assert.Len(t, got, DefaultPrecision)
}

func TestEncodeAlphabetEnds(t *testing.T) {
	lo, err := Encode(-90, -180, 1)
	require.NoError(t, err)
	assert.Equal(t, "0", lo)

	hi, err := Encode(90, 180, 1)
	require.NoError(t, err)
	assert.Equal(t, "z", hi)
}

func TestEncodeMidpointGoesLow(t *testing.T) {
	// Both axes sit on the first midpoint: bits are lon 0, lat 0, then 1, 1, 1.
	// Tables built with >= at the midpoint give "s" here instead.
	got, err := Encode(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	got, err = Encode(0, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, "7zzzzzz", got)

	// Longitude 0 lands in the western half, so the first bit is 0 and the
	// first character stays below 'h' (index 16).
	for _, lat := range []float64{-60, -1, 1, 60} {
		got, err := Encode(lat, 0, 1)
		require.NoError(t, err)
		assert.Less(t, strings.IndexByte(Alphabet, got[0]), 16, "lat %v", lat)
	}

	// A hair east of the meridian flips the first bit.
	got, err = Encode(10, math.Nextafter(0, 1), 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, strings.IndexByte(Alphabet, got[0]), 16)
}

func TestEncodeLength(t *testing.T) {
	for _, p := range samplePoints {
		for precision := 1; precision <= 12; precision++ {
			got, err := Encode(p.lat, p.lng, precision)
			require.NoError(t, err)
			assert.Len(t, got, precision, "%s precision %d", p.name, precision)
			for i := 0; i < len(got); i++ {
				assert.True(t, strings.IndexByte(Alphabet, got[i]) >= 0, "%s: %q", p.name, got)
			}
		}
	}
}

func TestEncodeHighPrecision(t *testing.T) {
	got, err := Encode(34.0522, -118.2437, 30)
	require.NoError(t, err)
	assert.Len(t, got, 30)
	assert.True(t, strings.HasPrefix(got, "9q5ctr1"))
}

func TestEncodePrefixMonotonic(t *testing.T) {
	for _, p := range samplePoints {
		prev, err := Encode(p.lat, p.lng, 1)
		require.NoError(t, err)
		for precision := 2; precision <= 12; precision++ {
			next, err := Encode(p.lat, p.lng, precision)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(next, prev), "%s: %q is not a prefix of %q", p.name, prev, next)
			prev = next
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	want, err := Encode(34.0522, -118.2437, 9)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Encode(34.0522, -118.2437, 9)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEncodeMatchesReferenceLibrary(t *testing.T) {
	for _, p := range samplePoints {
		for _, precision := range []int{1, 5, 7, 9, 12} {
			got, err := Encode(p.lat, p.lng, precision)
			require.NoError(t, err)
			want := mmgeohash.EncodeWithPrecision(p.lat, p.lng, uint(precision))
			assert.Equal(t, want, got, "%s precision %d", p.name, precision)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		lat, lng  float64
		precision int
		want      error
	}{
		{"nan latitude", math.NaN(), 0, 7, ErrInvalidArgument},
		{"nan longitude", 0, math.NaN(), 7, ErrInvalidArgument},
		{"inf latitude", math.Inf(1), 0, 7, ErrInvalidArgument},
		{"negative inf longitude", 0, math.Inf(-1), 7, ErrInvalidArgument},
		{"zero precision", 10, 10, 0, ErrInvalidArgument},
		{"negative precision", 10, 10, -3, ErrInvalidArgument},
		{"latitude too high", 90.0001, 0, 7, ErrOutOfRange},
		{"latitude too low", -91, 0, 7, ErrOutOfRange},
		{"longitude too high", 0, 180.5, 7, ErrOutOfRange},
		{"longitude too low", 0, -181, 7, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.lat, tt.lng, tt.precision)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, got)
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Encode(34.0522, -118.2437, DefaultPrecision)
	}
}
