package geoindex

import (
	"math"
	"sync"
)

const (
	nodeCapacity = 4
	maxDepth     = 24
)

// Bounds represents the boundaries of a region, X is longitude and Y latitude.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// WorldBounds covers every valid coordinate.
var WorldBounds = Bounds{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90}

// QuadtreeNode represents a node in the quadtree
type QuadtreeNode struct {
	Bounds   Bounds
	Entries  []Entry
	Children [4]*QuadtreeNode
	depth    int
}

// Quadtree is a point quadtree over lat/lng space.
type Quadtree struct {
	root *QuadtreeNode
	size int
	mu   sync.RWMutex
}

// NewQuadtree initializes a new Quadtree with given bounds
func NewQuadtree(bounds Bounds) *Quadtree {
	return &Quadtree{
		root: &QuadtreeNode{Bounds: bounds},
	}
}

// Insert adds or replaces the entry with e.ID. Entries outside the tree
// bounds are ignored.
func (qt *Quadtree) Insert(e Entry) {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	if qt.root.remove(e.ID) {
		qt.size--
	}
	if qt.root.insert(e) {
		qt.size++
	}
}

// Remove deletes the entry with the given id.
func (qt *Quadtree) Remove(id int64) bool {
	qt.mu.Lock()
	defer qt.mu.Unlock()
	if qt.root.remove(id) {
		qt.size--
		return true
	}
	return false
}

// Len returns the number of indexed entries.
func (qt *Quadtree) Len() int {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return qt.size
}

// Search returns entries within radius degrees of the point.
func (qt *Quadtree) Search(lat, lng, radius float64) []Entry {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return qt.root.searchNearby(lng, lat, radius)
}

// insert adds an entry to the node, subdividing when it is full
func (node *QuadtreeNode) insert(e Entry) bool {
	if !node.contains(e.Lng, e.Lat) {
		return false
	}
	if node.Children[0] == nil {
		if len(node.Entries) < nodeCapacity || node.depth >= maxDepth {
			node.Entries = append(node.Entries, e)
			return true
		}
		node.subdivide()
	}
	// Points on a shared edge go to the first child that holds them.
	for _, child := range node.Children {
		if child.insert(e) {
			return true
		}
	}
	return false
}

func (node *QuadtreeNode) remove(id int64) bool {
	for i, e := range node.Entries {
		if e.ID == id {
			node.Entries = append(node.Entries[:i], node.Entries[i+1:]...)
			return true
		}
	}
	if node.Children[0] == nil {
		return false
	}
	for _, child := range node.Children {
		if child.remove(id) {
			return true
		}
	}
	return false
}

func (node *QuadtreeNode) contains(x, y float64) bool {
	return x >= node.Bounds.MinX && x <= node.Bounds.MaxX &&
		y >= node.Bounds.MinY && y <= node.Bounds.MaxY
}

// subdivide splits the node into four children and pushes its entries down
func (node *QuadtreeNode) subdivide() {
	b := node.Bounds
	midX := (b.MinX + b.MaxX) / 2
	midY := (b.MinY + b.MaxY) / 2
	d := node.depth + 1
	node.Children[0] = &QuadtreeNode{Bounds: Bounds{b.MinX, b.MinY, midX, midY}, depth: d}
	node.Children[1] = &QuadtreeNode{Bounds: Bounds{midX, b.MinY, b.MaxX, midY}, depth: d}
	node.Children[2] = &QuadtreeNode{Bounds: Bounds{b.MinX, midY, midX, b.MaxY}, depth: d}
	node.Children[3] = &QuadtreeNode{Bounds: Bounds{midX, midY, b.MaxX, b.MaxY}, depth: d}

	entries := node.Entries
	node.Entries = nil
	for _, e := range entries {
		for _, child := range node.Children {
			if child.insert(e) {
				break
			}
		}
	}
}

func (node *QuadtreeNode) searchNearby(x, y, radius float64) []Entry {
	if !node.intersectsCircle(x, y, radius) {
		return nil
	}
	var result []Entry
	for _, e := range node.Entries {
		if distance(e.Lng, e.Lat, x, y) <= radius {
			result = append(result, e)
		}
	}
	if node.Children[0] != nil {
		for _, child := range node.Children {
			result = append(result, child.searchNearby(x, y, radius)...)
		}
	}
	return result
}

// intersectsCircle checks if a circle intersects with the node's bounds
func (node *QuadtreeNode) intersectsCircle(x, y, radius float64) bool {
	closestX := math.Max(node.Bounds.MinX, math.Min(x, node.Bounds.MaxX))
	closestY := math.Max(node.Bounds.MinY, math.Min(y, node.Bounds.MaxY))
	dx := closestX - x
	dy := closestY - y
	return (dx*dx + dy*dy) <= (radius * radius)
}

// distance is the planar distance in degrees
func distance(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}
