package geohash

import (
	"errors"
	"fmt"
	"math"
)

// DefaultPrecision is the hash length used by search clients.
const DefaultPrecision = 7

// Alphabet is the geohash base-32 alphabet (no a, i, l, o).
const Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

var (
	// ErrInvalidArgument reports non-finite coordinates, a bad precision or a malformed hash.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange reports a latitude outside [-90, 90] or a longitude outside [-180, 180].
	ErrOutOfRange = errors.New("coordinate out of range")
)

// Encode converts a coordinate into a geohash of exactly precision characters.
//
// Longitude and latitude intervals are bisected alternately, longitude first.
// A value equal to the midpoint falls into the lower half, so results are
// stable for callers that use the hash as a lookup key.
func Encode(lat, lng float64, precision int) (string, error) {
	if err := ValidateCoordinate(lat, lng); err != nil {
		return "", err
	}
	if precision < 1 {
		return "", fmt.Errorf("%w: precision %d must be positive", ErrInvalidArgument, precision)
	}

	lonMin, lonMax := -180.0, 180.0
	latMin, latMax := -90.0, 90.0

	out := make([]byte, 0, precision)
	bits, idx := 0, 0
	lonStep := true

	for len(out) < precision {
		idx <<= 1
		if lonStep {
			mid := (lonMin + lonMax) / 2
			if lng > mid {
				idx |= 1
				lonMin = mid
			} else {
				lonMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if lat > mid {
				idx |= 1
				latMin = mid
			} else {
				latMax = mid
			}
		}
		lonStep = !lonStep

		bits++
		if bits == 5 {
			out = append(out, Alphabet[idx])
			bits, idx = 0, 0
		}
	}

	return string(out), nil
}

// EncodeDefault encodes with DefaultPrecision.
func EncodeDefault(lat, lng float64) (string, error) {
	return Encode(lat, lng, DefaultPrecision)
}

// ValidateCoordinate rejects non-finite and out-of-range coordinates.
func ValidateCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return fmt.Errorf("%w: latitude %v is not finite", ErrInvalidArgument, lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) {
		return fmt.Errorf("%w: longitude %v is not finite", ErrInvalidArgument, lng)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrOutOfRange, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v", ErrOutOfRange, lng)
	}
	return nil
}
