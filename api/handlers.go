package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"geohash-service/database"
	"geohash-service/geohash"
	"geohash-service/geoindex"
	"geohash-service/models"
	"geohash-service/search"

	"github.com/gorilla/mux"
)

// VenueService is the search-side dependency of the handlers.
type VenueService interface {
	Register(ctx context.Context, v *models.Venue) error
	Get(ctx context.Context, id int64) (*models.Venue, error)
	FindByName(ctx context.Context, name string) ([]models.Venue, error)
	Remove(ctx context.Context, id int64) error
	Nearby(ctx context.Context, q search.Query) ([]models.SearchResult, error)
	Nearest(ctx context.Context, q search.Query) ([]models.SearchResult, error)
}

type Handler struct {
	venues           VenueService
	defaultPrecision int
	maxPrecision     int
}

func NewHandler(venues VenueService, defaultPrecision, maxPrecision int) *Handler {
	return &Handler{venues: venues, defaultPrecision: defaultPrecision, maxPrecision: maxPrecision}
}

type encodeResponse struct {
	Geohash   string  `json:"geohash"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Precision int     `json:"precision"`
}

type decodeResponse struct {
	Geohash   string      `json:"geohash"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Bounds    geohash.Box `json:"bounds"`
}

type neighborsResponse struct {
	Geohash   string   `json:"geohash"`
	Neighbors []string `json:"neighbors"`
}

// Encode handles GET /api/geohash?lat=&lng=&precision=
func (h *Handler) Encode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := parseFloat(q.Get("lat"), "lat")
	if err != nil {
		writeError(w, err)
		return
	}
	lng, err := parseFloat(q.Get("lng"), "lng")
	if err != nil {
		writeError(w, err)
		return
	}
	precision, err := h.parsePrecision(q.Get("precision"))
	if err != nil {
		writeError(w, err)
		return
	}

	hash, err := geohash.Encode(lat, lng, precision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{Geohash: hash, Latitude: lat, Longitude: lng, Precision: precision})
}

// Decode handles GET /api/geohash/{hash}
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	hash, err := geohash.Normalize(mux.Vars(r)["hash"])
	if err != nil {
		writeError(w, err)
		return
	}
	box, err := geohash.Bounds(hash)
	if err != nil {
		writeError(w, err)
		return
	}
	lat, lng := box.Center()
	writeJSON(w, http.StatusOK, decodeResponse{Geohash: hash, Latitude: lat, Longitude: lng, Bounds: box})
}

// Neighbors handles GET /api/geohash/{hash}/neighbors
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	hash, err := geohash.Normalize(mux.Vars(r)["hash"])
	if err != nil {
		writeError(w, err)
		return
	}
	neighbors, err := geohash.Neighbors(hash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, neighborsResponse{Geohash: hash, Neighbors: neighbors})
}

// CreateVenue handles POST /api/venues
func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var v models.Venue
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request payload", geohash.ErrInvalidArgument))
		return
	}
	v.ID = 0
	if err := h.venues.Register(r.Context(), &v); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// FindVenues handles GET /api/venues?name=
func (h *Handler) FindVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.venues.FindByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if venues == nil {
		venues = []models.Venue{}
	}
	writeJSON(w, http.StatusOK, venues)
}

// GetVenue handles GET /api/venues/{id}
func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.venues.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteVenue handles DELETE /api/venues/{id}
func (h *Handler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.venues.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search?geohash=&distance=&category=&keyword=&technique=&limit=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := h.venues.Nearby(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// Nearest handles GET /api/nearest?geohash=&category=&keyword=&technique=&limit=
func (h *Handler) Nearest(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := h.venues.Nearest(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func parseQuery(r *http.Request) (search.Query, error) {
	v := r.URL.Query()
	q := search.Query{
		Geohash:   v.Get("geohash"),
		Category:  v.Get("category"),
		Keyword:   v.Get("keyword"),
		Technique: v.Get("technique"),
	}
	if s := v.Get("distance"); s != "" {
		d, err := parseFloat(s, "distance")
		if err != nil {
			return q, err
		}
		if d <= 0 {
			return q, fmt.Errorf("%w: distance must be positive", geohash.ErrInvalidArgument)
		}
		q.DistanceMiles = d
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%w: limit %q", geohash.ErrInvalidArgument, s)
		}
		q.Limit = n
	}
	return q, nil
}

func (h *Handler) parsePrecision(s string) (int, error) {
	if s == "" {
		return h.defaultPrecision, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: precision %q is not an integer", geohash.ErrInvalidArgument, s)
	}
	if p < 1 || p > h.maxPrecision {
		return 0, fmt.Errorf("%w: precision %d outside [1, %d]", geohash.ErrInvalidArgument, p, h.maxPrecision)
	}
	return p, nil
}

func parseFloat(s, name string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", geohash.ErrInvalidArgument, name)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", geohash.ErrInvalidArgument, name, s)
	}
	return f, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid venue id %q", geohash.ErrInvalidArgument, s)
	}
	return id, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, geohash.ErrInvalidArgument),
		errors.Is(err, geohash.ErrOutOfRange),
		errors.Is(err, geoindex.ErrUnsupportedTechnique):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound), errors.Is(err, geoindex.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
