package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/storage"
)

// File exists for serving stored uploads
type File struct {
	Files *storage.Local
}

// FileHandler streams a stored upload. ?download=true sends it as an attachment
// under ?name= when given.
func (f File) FileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q := r.URL.Query()
	err := f.Files.ServeFile(w, r, vars["category"], vars["filename"], q.Get("name"), q.Get("download") == "true")
	if err != nil {
		writeError(w, "failed to get file", err)
	}
}
