package handler

import (
	"log"
	"net/http"

	"github.com/umami-pos/api/internal/collection"
)

// RemoteStore is a document collection mirrored in memory.
// Satisfied by *collection.Remote[T]; narrow interface for testability.
type RemoteStore[T collection.Entity] interface {
	collection.Store[T]
	Err() error
}

// collectionErrorHeader carries the collection error flag on list responses.
// The list itself is still the last successful reload.
const collectionErrorHeader = "X-Collection-Error"

func flagCollectionError[T collection.Entity](w http.ResponseWriter, store RemoteStore[T]) {
	if err := store.Err(); err != nil {
		w.Header().Set(collectionErrorHeader, err.Error())
	}
}

func findByID[T collection.Entity](docs []T, id string) (T, bool) {
	for _, d := range docs {
		if d.GetID() == id {
			return d, true
		}
	}
	var zero T
	return zero, false
}

func writeRemoteError(w http.ResponseWriter, op string, err error) {
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "document store unavailable"})
}
