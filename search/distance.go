package search

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	metersPerMile  = 1609.344
	milesPerDegree = 69.0
)

// distanceMiles is the great-circle distance between two coordinates.
func distanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lng1, lat1}, orb.Point{lng2, lat2}) / metersPerMile
}

// radiusDegrees converts a radius in miles to a planar radius in degrees
// wide enough to cover it in both axes at the given latitude.
func radiusDegrees(miles, lat float64) float64 {
	scale := math.Max(math.Cos(lat*math.Pi/180), 0.01)
	return math.Min(miles/milesPerDegree/scale, 360)
}

// cellSize returns the height and width in degrees of a geohash cell.
func cellSize(precision int) (latDeg, lngDeg float64) {
	bits := 5 * precision
	lngBits := (bits + 1) / 2
	latBits := bits / 2
	return 180 / math.Exp2(float64(latBits)), 360 / math.Exp2(float64(lngBits))
}

// coverPrecision returns the longest geohash length, at most maxPrecision,
// whose cell is at least as large as the radius in both axes. A cell and
// its neighbors then contain every point within the radius.
func coverPrecision(miles, lat float64, maxPrecision int) int {
	latRadius := miles / milesPerDegree
	lngRadius := radiusDegrees(miles, lat)
	for p := maxPrecision; p > 1; p-- {
		h, w := cellSize(p)
		if h >= latRadius && w >= lngRadius {
			return p
		}
	}
	return 1
}
