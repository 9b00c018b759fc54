package geoindex

import (
	"errors"
	"fmt"
	"strings"
)

type Technique string

const (
	GeohashingTechnique Technique = "geohashing"
	RTreeTechnique      Technique = "rtree"
	QuadtreeTechnique   Technique = "quadtree"
)

var (
	ErrUnsupportedTechnique = errors.New("unsupported geo-indexing technique")
	ErrNoResults            = errors.New("no nearby points found after maximum retries")
)

// ParseTechnique maps a name to a Technique. Empty input yields fallback.
func ParseTechnique(name string, fallback Technique) (Technique, error) {
	switch t := Technique(strings.ToLower(strings.TrimSpace(name))); t {
	case "":
		return fallback, nil
	case GeohashingTechnique, RTreeTechnique, QuadtreeTechnique:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTechnique, name)
	}
}

// Entry is an indexed point. Lat/Lng are in degrees.
type Entry struct {
	ID  int64
	Lat float64
	Lng float64
}

// Index is an in-memory spatial index over entries. Radius is in degrees.
type Index interface {
	Insert(e Entry)
	Remove(id int64) bool
	Search(lat, lng, radius float64) []Entry
	Len() int
}

// New builds an empty index for the in-memory techniques.
func New(technique Technique) (Index, error) {
	switch technique {
	case RTreeTechnique:
		return NewRTree(), nil
	case QuadtreeTechnique:
		return NewQuadtree(WorldBounds), nil
	default:
		return nil, fmt.Errorf("%w: %q has no in-memory index", ErrUnsupportedTechnique, technique)
	}
}

// SearchWithRetries searches idx, doubling the radius after every empty attempt.
func SearchWithRetries(idx Index, lat, lng, radius float64, maxRetries int) ([]Entry, error) {
	for i := 0; i < maxRetries; i++ {
		if results := idx.Search(lat, lng, radius); len(results) > 0 {
			return results, nil
		}
		radius *= 2
	}
	return nil, ErrNoResults
}
