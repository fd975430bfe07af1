package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/metrics"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessHandler handles gate entry and exit control.
type AccessHandler struct {
	access db.AccessCollection
	orders db.WorkOrderCollection
	Now    func() time.Time
}

// NewAccessHandler creates a new gate access handler.
func NewAccessHandler(access db.AccessCollection, orders db.WorkOrderCollection) *AccessHandler {
	return &AccessHandler{
		access: access,
		orders: orders,
		Now:    time.Now,
	}
}

// List returns all access records, newest entry first.
func (h *AccessHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.access.FindAccessRecords(r.Context(), bson.M{})
	if err != nil {
		respondInternal(w, "registros-acceso", err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// Create registers a physical vehicle entry through the gate.
func (h *AccessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Patente      string `json:"patente"`
		ChoferNombre string `json:"choferNombre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "registros-acceso", "JSON inválido")
		return
	}

	if req.Patente == "" {
		respondError(w, http.StatusBadRequest, "registros-acceso", "faltan campos requeridos: patente")
		return
	}

	record := models.AccessRecord{
		Patente:      req.Patente,
		Tipo:         models.AccesoTipoIngreso,
		ChoferNombre: req.ChoferNombre,
		FechaIngreso: h.Now(),
	}

	id, err := h.access.InsertAccessRecord(r.Context(), record)
	if err != nil {
		respondInternal(w, "registros-acceso", err)
		return
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		record.ID = oid
	}

	log.WithFields(log.Fields{"registro": id, "patente": record.Patente}).Info("Vehicle entry registered")
	respondJSON(w, http.StatusCreated, record)
}

// ControlSalida authorizes a vehicle exit. An order in a blocking state for
// the plate denies the exit with 403, naming the order and its mechanic.
func (h *AccessHandler) ControlSalida(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "registros-acceso", "JSON inválido")
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "registros-acceso", "faltan campos requeridos: id")
		return
	}

	record, err := h.access.FindAccessRecordByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "registros-acceso", "registro de acceso no encontrado")
			return
		}
		respondInternal(w, "registros-acceso", err)
		return
	}

	if !record.IsOpen() {
		respondError(w, http.StatusConflict, "registros-acceso", "la salida ya fue registrada")
		return
	}

	blocking, err := h.orders.FindBlockingByPlate(r.Context(), record.Patente)
	if err != nil {
		respondInternal(w, "registros-acceso", err)
		return
	}
	if blocking != nil {
		metrics.ExitsDeniedTotal.Inc()
		mecanico := blocking.MecanicoAsignadoNombre
		if mecanico == "" {
			mecanico = "sin asignar"
		}
		respondError(w, http.StatusForbidden, "registros-acceso", fmt.Sprintf(
			"salida denegada: la orden %s está en estado %q (mecánico: %s)",
			blocking.ID.Hex(), blocking.Estado, mecanico))
		return
	}

	salida := h.Now()

	// The vehicle is leaving: its open orders get their fechaSalidaTaller
	// milestone. The $exists guard makes a retried exit a no-op here.
	if err := h.orders.StampSalidaTaller(r.Context(), record.Patente, salida); err != nil {
		respondInternal(w, "registros-acceso", err)
		return
	}

	if err := h.access.StampExit(r.Context(), req.ID, salida); err != nil {
		switch {
		case errors.Is(err, db.ErrConflict):
			respondError(w, http.StatusConflict, "registros-acceso", "la salida ya fue registrada")
		case errors.Is(err, db.ErrNotFound):
			respondError(w, http.StatusNotFound, "registros-acceso", "registro de acceso no encontrado")
		default:
			respondInternal(w, "registros-acceso", err)
		}
		return
	}
	record.FechaSalida = &salida

	log.WithFields(log.Fields{"registro": req.ID, "patente": record.Patente}).Info("Vehicle exit registered")
	respondJSON(w, http.StatusOK, record)
}
