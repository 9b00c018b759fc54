package geohash

import (
	"fmt"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// MaxCellPrecision is the longest hash the cell helpers decode; the decoder
// packs a hash into 64 bits.
const MaxCellPrecision = 12

// Box is the latitude/longitude rectangle covered by a geohash cell.
type Box struct {
	MinLat float64 `json:"min_latitude"`
	MaxLat float64 `json:"max_latitude"`
	MinLng float64 `json:"min_longitude"`
	MaxLng float64 `json:"max_longitude"`
}

// Center returns the midpoint of the box.
func (b Box) Center() (lat, lng float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLng + b.MaxLng) / 2
}

// Contains reports whether the point lies inside the box, edges included.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Normalize lower-cases a hash and checks its length and alphabet.
func Normalize(hash string) (string, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" {
		return "", fmt.Errorf("%w: empty geohash", ErrInvalidArgument)
	}
	if len(hash) > MaxCellPrecision {
		return "", fmt.Errorf("%w: geohash %q longer than %d characters", ErrInvalidArgument, hash, MaxCellPrecision)
	}
	for i := 0; i < len(hash); i++ {
		if strings.IndexByte(Alphabet, hash[i]) < 0 {
			return "", fmt.Errorf("%w: geohash %q has invalid character %q at %d", ErrInvalidArgument, hash, hash[i], i)
		}
	}
	return hash, nil
}

// Validate reports whether hash is a well-formed geohash.
func Validate(hash string) error {
	_, err := Normalize(hash)
	return err
}

// Bounds decodes the cell covered by hash.
func Bounds(hash string) (Box, error) {
	hash, err := Normalize(hash)
	if err != nil {
		return Box{}, err
	}
	b := geohash.BoundingBox(hash)
	return Box{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLng: b.MinLng, MaxLng: b.MaxLng}, nil
}

// Center decodes hash to the midpoint of its cell.
func Center(hash string) (lat, lng float64, err error) {
	box, err := Bounds(hash)
	if err != nil {
		return 0, 0, err
	}
	lat, lng = box.Center()
	return lat, lng, nil
}

// Neighbors returns the eight cells around hash, north first then clockwise.
func Neighbors(hash string) ([]string, error) {
	hash, err := Normalize(hash)
	if err != nil {
		return nil, err
	}
	return geohash.Neighbors(hash), nil
}

// Cells returns hash followed by its neighbors.
func Cells(hash string) ([]string, error) {
	neighbors, err := Neighbors(hash)
	if err != nil {
		return nil, err
	}
	hash, _ = Normalize(hash)
	return append([]string{hash}, neighbors...), nil
}

// Truncate shortens hash to at most precision characters, i.e. its parent cell.
func Truncate(hash string, precision int) string {
	if precision > 0 && len(hash) > precision {
		return hash[:precision]
	}
	return hash
}
