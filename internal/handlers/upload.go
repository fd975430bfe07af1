package handlers

import (
	"net/http"

	"github.com/pepsifleet/fleet-maintenance/internal/fotos"
	log "github.com/sirupsen/logrus"
)

// UploadHandler streams photo uploads into the photo store.
type UploadHandler struct {
	store fotos.Store
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(store fotos.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadFoto stores the raw request body under a generated name and returns
// the public URL for the client to attach to a work order.
func (h *UploadHandler) UploadFoto(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		respondError(w, http.StatusBadRequest, "fotos", "falta el parámetro filename")
		return
	}

	url, err := h.store.Save(filename, r.Body)
	if err != nil {
		respondInternal(w, "fotos", err)
		return
	}

	log.WithField("url", url).Info("Photo uploaded")
	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
