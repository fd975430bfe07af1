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

// VehicleHandler handles vehicle CRUD.
type VehicleHandler struct {
	vehicles db.VehicleCollection
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(vehicles db.VehicleCollection) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// List returns all vehicles.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.FindVehicles(r.Context(), bson.M{})
	if err != nil {
		respondInternal(w, "vehiculos", err)
		return
	}
	respondJSON(w, http.StatusOK, vehicles)
}

// Create inserts a new vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		respondError(w, http.StatusBadRequest, "vehiculos", "JSON inválido")
		return
	}

	if vehicle.Patente == "" || vehicle.Marca == "" || vehicle.Modelo == "" {
		respondError(w, http.StatusBadRequest, "vehiculos", "faltan campos requeridos: patente, marca, modelo")
		return
	}
	if vehicle.Estado == "" {
		vehicle.Estado = "activo"
	}

	id, err := h.vehicles.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		respondInternal(w, "vehiculos", err)
		return
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		vehicle.ID = oid
	}
	respondJSON(w, http.StatusCreated, vehicle)
}

// Update replaces a vehicle's fields.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		respondError(w, http.StatusBadRequest, "vehiculos", "JSON inválido")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.vehicles.UpdateVehicle(r.Context(), id, vehicle); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "vehiculos", "vehículo no encontrado")
			return
		}
		respondInternal(w, "vehiculos", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "vehículo actualizado"})
}

// Delete removes a vehicle.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.vehicles.DeleteVehicle(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "vehiculos", "vehículo no encontrado")
			return
		}
		respondInternal(w, "vehiculos", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "vehículo eliminado"})
}
