package leaderstatus

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter returns an HTTP router exposing store's current leader state at
// GET /v1/members.
func NewRouter(store *Store) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/v1/members", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(store.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/v1/members/{worker}", func(w http.ResponseWriter, r *http.Request) {
		worker := mux.Vars(r)["worker"]

		status, ok := store.Snapshot()[worker]
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}).Methods(http.MethodGet)

	return r
}
