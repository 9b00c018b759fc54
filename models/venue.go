package models

type Venue struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Geohash   string  `json:"geohash"`
}

// SearchResult is a venue matched by a nearby search.
type SearchResult struct {
	Venue
	DistanceMiles float64 `json:"distance_miles"`
}
