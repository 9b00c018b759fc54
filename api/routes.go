package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RegisterRoutes builds the router. Access logs go to logOut when it is not nil.
func RegisterRoutes(h *Handler, logOut io.Writer) http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	// Geohash endpoints
	api.HandleFunc("/geohash", h.Encode).Methods("GET")
	api.HandleFunc("/geohash/{hash}", h.Decode).Methods("GET")
	api.HandleFunc("/geohash/{hash}/neighbors", h.Neighbors).Methods("GET")

	// Venue endpoints
	api.HandleFunc("/venues", h.CreateVenue).Methods("POST")
	api.HandleFunc("/venues", h.FindVenues).Methods("GET")
	api.HandleFunc("/venues/{id}", h.GetVenue).Methods("GET")
	api.HandleFunc("/venues/{id}", h.DeleteVenue).Methods("DELETE")

	// Search endpoints
	api.HandleFunc("/search", h.Search).Methods("GET")
	api.HandleFunc("/nearest", h.Nearest).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	var handler http.Handler = cors(router)
	if logOut != nil {
		handler = handlers.LoggingHandler(logOut, handler)
	}
	return handler
}
