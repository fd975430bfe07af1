package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SparePartHandler handles the spare-parts catalog.
type SparePartHandler struct {
	parts db.SparePartCollection
}

// NewSparePartHandler creates a new spare-part handler.
func NewSparePartHandler(parts db.SparePartCollection) *SparePartHandler {
	return &SparePartHandler{parts: parts}
}

// List returns all catalog entries.
func (h *SparePartHandler) List(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.FindSpareParts(r.Context(), bson.M{})
	if err != nil {
		respondInternal(w, "repuestos", err)
		return
	}
	respondJSON(w, http.StatusOK, parts)
}

// Create inserts a catalog entry.
func (h *SparePartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var part models.SparePart
	if err := json.NewDecoder(r.Body).Decode(&part); err != nil {
		respondError(w, http.StatusBadRequest, "repuestos", "JSON inválido")
		return
	}

	if part.Nombre == "" || part.Codigo == "" {
		respondError(w, http.StatusBadRequest, "repuestos", "faltan campos requeridos: nombre, codigo")
		return
	}

	id, err := h.parts.InsertSparePart(r.Context(), part)
	if err != nil {
		respondInternal(w, "repuestos", err)
		return
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		part.ID = oid
	}
	respondJSON(w, http.StatusCreated, part)
}

// Delete removes a catalog entry.
func (h *SparePartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.parts.DeleteSparePart(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "repuestos", "repuesto no encontrado")
			return
		}
		respondInternal(w, "repuestos", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "repuesto eliminado"})
}
