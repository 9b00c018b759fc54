package geoindex

import (
	"sync"

	"github.com/dhconnelly/rtreego"
)

// pointTolerance is the half-width of the box stored for each point.
const pointTolerance = 0.0001

// spatialEntry wraps an entry to satisfy the rtreego.Spatial interface
type spatialEntry struct {
	Entry
}

// Bounds returns a small rectangle around the point.
func (s spatialEntry) Bounds() rtreego.Rect {
	return rtreego.Point{s.Lng, s.Lat}.ToRect(pointTolerance)
}

// RTree indexes entries in an R-tree keyed on (lng, lat).
type RTree struct {
	tree  *rtreego.Rtree
	items map[int64]spatialEntry
	mu    sync.RWMutex
}

func NewRTree() *RTree {
	return &RTree{
		tree:  rtreego.NewTree(2, 25, 50),
		items: make(map[int64]spatialEntry),
	}
}

// Insert adds or replaces the entry with e.ID.
func (r *RTree) Insert(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.items[e.ID]; ok {
		r.tree.Delete(old)
	}
	item := spatialEntry{e}
	r.items[e.ID] = item
	r.tree.Insert(item)
}

func (r *RTree) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return false
	}
	delete(r.items, id)
	return r.tree.Delete(item)
}

func (r *RTree) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Search returns entries within radius degrees of the point.
func (r *RTree) Search(lat, lng, radius float64) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	center := rtreego.Point{lng, lat}
	var result []Entry
	for _, s := range r.tree.SearchIntersect(center.ToRect(radius)) {
		e := s.(spatialEntry).Entry
		if distance(e.Lng, e.Lat, lng, lat) <= radius {
			result = append(result, e)
		}
	}
	return result
}
