package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"geohash-service/geohash"
	"geohash-service/geoindex"
	"geohash-service/models"
)

// ErrInvalidVenue wraps geohash.ErrInvalidArgument for venues missing required fields.
var ErrInvalidVenue = fmt.Errorf("%w: invalid venue", geohash.ErrInvalidArgument)

// allCategories is the catch-all category sent by search forms.
const allCategories = "default"

type VenueStore interface {
	Create(ctx context.Context, v *models.Venue) error
	Get(ctx context.Context, id int64) (*models.Venue, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Venue, error)
	ListByGeohashPrefix(ctx context.Context, prefix string) ([]models.Venue, error)
	ListByName(ctx context.Context, name string) ([]models.Venue, error)
}

type VenueCache interface {
	Add(ctx context.Context, v models.Venue) error
	Remove(ctx context.Context, v models.Venue) error
	Members(ctx context.Context, cells ...string) ([]models.Venue, error)
	CellPrecision() int
}

type Options struct {
	// Precision is the geohash length stored with each venue.
	Precision        int
	DefaultTechnique geoindex.Technique
	MaxRetries       int
	// InitialRadius is the first radius, in degrees, of a nearest search.
	InitialRadius   float64
	DefaultDistance float64
}

// Query describes a nearby search around the center of a geohash cell.
type Query struct {
	Geohash       string
	DistanceMiles float64
	Category      string
	// Keyword keeps venues whose name contains it, ignoring case.
	Keyword   string
	Technique string
	Limit     int
}

// Service registers venues and finds them by geohash.
type Service struct {
	store   VenueStore
	cache   VenueCache
	indexes map[geoindex.Technique]geoindex.Index
	opts    Options
}

func NewService(store VenueStore, cache VenueCache, opts Options) *Service {
	if opts.Precision < 1 {
		opts.Precision = geohash.DefaultPrecision
	}
	if opts.DefaultTechnique == "" {
		opts.DefaultTechnique = geoindex.GeohashingTechnique
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.InitialRadius <= 0 {
		opts.InitialRadius = 0.05
	}
	if opts.DefaultDistance <= 0 {
		opts.DefaultDistance = 10
	}
	return &Service{
		store: store,
		cache: cache,
		indexes: map[geoindex.Technique]geoindex.Index{
			geoindex.RTreeTechnique:    geoindex.NewRTree(),
			geoindex.QuadtreeTechnique: geoindex.NewQuadtree(geoindex.WorldBounds),
		},
		opts: opts,
	}
}

// Warm loads every stored venue into the cache and the in-memory indexes.
func (s *Service) Warm(ctx context.Context) (int, error) {
	venues, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, v := range venues {
		s.track(ctx, v)
	}
	return len(venues), nil
}

// Register validates v, stamps its geohash and stores it.
func (s *Service) Register(ctx context.Context, v *models.Venue) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidVenue)
	}
	hash, err := geohash.Encode(v.Latitude, v.Longitude, s.opts.Precision)
	if err != nil {
		return err
	}
	v.Geohash = hash

	if err := s.store.Create(ctx, v); err != nil {
		return err
	}
	s.track(ctx, *v)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Venue, error) {
	return s.store.Get(ctx, id)
}

// FindByName returns the venues whose name contains name, ignoring case.
func (s *Service) FindByName(ctx context.Context, name string) ([]models.Venue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", geohash.ErrInvalidArgument)
	}
	return s.store.ListByName(ctx, name)
}

// Remove deletes a venue from the store, the cache and the indexes.
func (s *Service) Remove(ctx context.Context, id int64) error {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Remove(ctx, *v); err != nil {
		log.Printf("Failed to uncache venue %d: %v", id, err)
	}
	for _, idx := range s.indexes {
		idx.Remove(id)
	}
	return nil
}

// track adds v to the cache and indexes. The store stays the source of truth,
// so cache failures are logged only.
func (s *Service) track(ctx context.Context, v models.Venue) {
	if err := s.cache.Add(ctx, v); err != nil {
		log.Printf("Failed to cache venue %d: %v", v.ID, err)
	}
	for _, idx := range s.indexes {
		idx.Insert(geoindex.Entry{ID: v.ID, Lat: v.Latitude, Lng: v.Longitude})
	}
}

// Nearby returns venues within q.DistanceMiles of the center of q.Geohash,
// closest first.
func (s *Service) Nearby(ctx context.Context, q Query) ([]models.SearchResult, error) {
	lat, lng, technique, err := s.prepare(q)
	if err != nil {
		return nil, err
	}
	miles := q.DistanceMiles
	if miles <= 0 {
		miles = s.opts.DefaultDistance
	}

	var candidates []models.Venue
	if technique == geoindex.GeohashingTechnique {
		precision := coverPrecision(miles, lat, s.cellPrecision())
		candidates, err = s.cellVenues(ctx, lat, lng, precision)
	} else {
		entries := s.indexes[technique].Search(lat, lng, radiusDegrees(miles, lat))
		candidates, err = s.load(ctx, entries)
	}
	if err != nil {
		return nil, err
	}

	return rank(candidates, lat, lng, q.filter(), miles, q.Limit), nil
}

// Nearest widens the search around q.Geohash until something is found.
// The geohash technique steps up to coarser cells, the index techniques
// double their radius; both stop after MaxRetries attempts.
func (s *Service) Nearest(ctx context.Context, q Query) ([]models.SearchResult, error) {
	lat, lng, technique, err := s.prepare(q)
	if err != nil {
		return nil, err
	}

	var candidates []models.Venue
	if technique == geoindex.GeohashingTechnique {
		precision := s.cellPrecision()
		for i := 0; i < s.opts.MaxRetries && precision >= 1; i++ {
			venues, err := s.cellVenues(ctx, lat, lng, precision)
			if err != nil {
				return nil, err
			}
			if candidates = filterVenues(venues, q.filter()); len(candidates) > 0 {
				break
			}
			precision--
		}
	} else {
		entries, err := geoindex.SearchWithRetries(s.indexes[technique], lat, lng, s.opts.InitialRadius, s.opts.MaxRetries)
		if err != nil && !errors.Is(err, geoindex.ErrNoResults) {
			return nil, err
		}
		venues, err := s.load(ctx, entries)
		if err != nil {
			return nil, err
		}
		candidates = filterVenues(venues, q.filter())
	}

	if len(candidates) == 0 {
		return nil, geoindex.ErrNoResults
	}
	return rank(candidates, lat, lng, venueFilter{}, 0, q.Limit), nil
}

func (s *Service) prepare(q Query) (lat, lng float64, technique geoindex.Technique, err error) {
	technique, err = geoindex.ParseTechnique(q.Technique, s.opts.DefaultTechnique)
	if err != nil {
		return 0, 0, "", err
	}
	lat, lng, err = geohash.Center(q.Geohash)
	if err != nil {
		return 0, 0, "", err
	}
	return lat, lng, technique, nil
}

// cellPrecision is the length of the cache keys actually written: the cache
// truncates stored hashes, so it never exceeds the venue precision.
func (s *Service) cellPrecision() int {
	if p := s.cache.CellPrecision(); p < s.opts.Precision {
		return p
	}
	return s.opts.Precision
}

// cellVenues collects venues in the cell around (lat, lng) and its neighbors.
// Cells at the cache precision are read from redis, coarser ones from the store.
func (s *Service) cellVenues(ctx context.Context, lat, lng float64, precision int) ([]models.Venue, error) {
	center, err := geohash.Encode(lat, lng, precision)
	if err != nil {
		return nil, err
	}
	cells, err := geohash.Cells(center)
	if err != nil {
		return nil, err
	}

	if precision >= s.cellPrecision() {
		return s.cache.Members(ctx, cells...)
	}

	seen := make(map[int64]bool)
	var venues []models.Venue
	for _, cell := range cells {
		found, err := s.store.ListByGeohashPrefix(ctx, cell)
		if err != nil {
			return nil, err
		}
		for _, v := range found {
			if !seen[v.ID] {
				seen[v.ID] = true
				venues = append(venues, v)
			}
		}
	}
	return venues, nil
}

// load resolves index entries to venues.
func (s *Service) load(ctx context.Context, entries []geoindex.Entry) ([]models.Venue, error) {
	venues := make([]models.Venue, 0, len(entries))
	for _, e := range entries {
		v, err := s.store.Get(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		venues = append(venues, *v)
	}
	return venues, nil
}

// venueFilter holds the non-spatial conditions of a query. Empty fields match
// every venue.
type venueFilter struct {
	category string
	keyword  string
}

func (q Query) filter() venueFilter {
	category := strings.TrimSpace(q.Category)
	if strings.EqualFold(category, allCategories) {
		category = ""
	}
	return venueFilter{category: category, keyword: strings.ToLower(strings.TrimSpace(q.Keyword))}
}

func (f venueFilter) matches(v models.Venue) bool {
	if f.category != "" && !strings.EqualFold(v.Category, f.category) {
		return false
	}
	return f.keyword == "" || strings.Contains(strings.ToLower(v.Name), f.keyword)
}

func filterVenues(venues []models.Venue, f venueFilter) []models.Venue {
	var out []models.Venue
	for _, v := range venues {
		if f.matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// rank applies f and the distance limit (0 disables it), then sorts by
// distance and name.
func rank(venues []models.Venue, lat, lng float64, f venueFilter, maxMiles float64, limit int) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(venues))
	for _, v := range venues {
		if !f.matches(v) {
			continue
		}
		d := distanceMiles(lat, lng, v.Latitude, v.Longitude)
		if maxMiles > 0 && d > maxMiles {
			continue
		}
		results = append(results, models.SearchResult{Venue: v, DistanceMiles: d})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].DistanceMiles != results[j].DistanceMiles {
			return results[i].DistanceMiles < results[j].DistanceMiles
		}
		return results[i].Name < results[j].Name
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
