package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/metrics"
	"github.com/pepsifleet/fleet-maintenance/internal/middleware"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"github.com/pepsifleet/fleet-maintenance/internal/notify"
	"github.com/pepsifleet/fleet-maintenance/internal/scheduling"
	"github.com/pepsifleet/fleet-maintenance/internal/workorder"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestHandler handles driver maintenance requests and their conversion
// into work orders.
type RequestHandler struct {
	requests  db.RequestCollection
	orders    db.WorkOrderCollection
	linker    db.RequestLinker
	publisher notify.Publisher
	Now       func() time.Time
}

// NewRequestHandler creates a new maintenance-request handler.
func NewRequestHandler(requests db.RequestCollection, orders db.WorkOrderCollection, linker db.RequestLinker, publisher notify.Publisher) *RequestHandler {
	return &RequestHandler{
		requests:  requests,
		orders:    orders,
		linker:    linker,
		publisher: publisher,
		Now:       time.Now,
	}
}

// List returns maintenance requests. Drivers only see their own.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && claims.Role == models.RoleChofer {
		filter["choferId"] = claims.UserID
	}

	requests, err := h.requests.FindRequests(r.Context(), filter)
	if err != nil {
		respondInternal(w, "solicitudes", err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// Create registers a driver's maintenance request.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Patente             string `json:"patente"`
		DescripcionProblema string `json:"descripcionProblema"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitudes", "JSON inválido")
		return
	}

	if req.Patente == "" || req.DescripcionProblema == "" {
		respondError(w, http.StatusBadRequest, "solicitudes",
			"faltan campos requeridos: patente, descripcionProblema")
		return
	}

	solicitud := models.MaintenanceRequest{
		Patente:             req.Patente,
		DescripcionProblema: req.DescripcionProblema,
		Estado:              models.SolicitudPendiente,
		FechaCreacion:       h.Now(),
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		solicitud.ChoferID = claims.UserID
		solicitud.ChoferNombre = claims.Nombre
	}

	id, err := h.requests.InsertRequest(r.Context(), solicitud)
	if err != nil {
		respondInternal(w, "solicitudes", err)
		return
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		solicitud.ID = oid
	}

	log.WithFields(log.Fields{"solicitud": id, "patente": solicitud.Patente}).Info("Maintenance request created")
	respondJSON(w, http.StatusCreated, solicitud)
}

// Convert turns a pending request into a work order. Both writes run in one
// transaction: the request is marked Procesado and linked, the order is
// created, or neither happens.
func (h *RequestHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID                string     `json:"id"`
		FechaHoraAgendada *time.Time `json:"fechaHoraAgendada,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitudes", "JSON inválido")
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "solicitudes", "faltan campos requeridos: id")
		return
	}

	solicitud, err := h.requests.FindRequestByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "solicitudes", "solicitud no encontrada")
			return
		}
		respondInternal(w, "solicitudes", err)
		return
	}
	if solicitud.Estado != models.SolicitudPendiente {
		respondError(w, http.StatusConflict, "solicitudes", "la solicitud ya fue procesada")
		return
	}

	if req.FechaHoraAgendada != nil {
		t := *req.FechaHoraAgendada
		dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		sameDay, err := h.orders.FindScheduledBetween(r.Context(), dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			respondInternal(w, "solicitudes", err)
			return
		}
		if !scheduling.IsSlotFree(sameDay, t) {
			respondError(w, http.StatusConflict, "solicitudes", "el horario ya está ocupado")
			return
		}
	}

	order := workorder.NewWorkOrder(solicitud.Patente, solicitud.DescripcionProblema, req.FechaHoraAgendada, h.Now())
	order.SolicitudID = req.ID

	orderID, err := h.linker.ConvertToOrder(r.Context(), req.ID, order)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrConflict):
			respondError(w, http.StatusConflict, "solicitudes", "la solicitud ya fue procesada")
		case errors.Is(err, db.ErrNotFound):
			respondError(w, http.StatusNotFound, "solicitudes", "solicitud no encontrada")
		default:
			respondInternal(w, "solicitudes", err)
		}
		return
	}

	if oid, err := primitive.ObjectIDFromHex(orderID); err == nil {
		order.ID = oid
	}
	solicitud.Estado = models.SolicitudProcesado
	solicitud.IDOTRelacionada = orderID

	metrics.OrdersCreatedTotal.Inc()
	h.publisher.PublishOrderEstado(&order)
	log.WithFields(log.Fields{
		"solicitud": req.ID,
		"orden":     orderID,
		"patente":   solicitud.Patente,
	}).Info("Maintenance request converted to work order")

	respondJSON(w, http.StatusOK, solicitud)
}

// Delete removes a pending request (rejection). Processed requests stay.
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "solicitudes", "JSON inválido")
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "solicitudes", "faltan campos requeridos: id")
		return
	}

	solicitud, err := h.requests.FindRequestByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "solicitudes", "solicitud no encontrada")
			return
		}
		respondInternal(w, "solicitudes", err)
		return
	}
	if solicitud.Estado != models.SolicitudPendiente {
		respondError(w, http.StatusConflict, "solicitudes", "la solicitud ya fue procesada")
		return
	}

	if err := h.requests.DeleteRequest(r.Context(), req.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "solicitudes", "solicitud no encontrada")
			return
		}
		respondInternal(w, "solicitudes", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "solicitud eliminada"})
}
