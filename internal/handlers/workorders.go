package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
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

// WorkOrderHandler handles work-order lifecycle requests.
type WorkOrderHandler struct {
	orders    db.WorkOrderCollection
	publisher notify.Publisher
	Now       func() time.Time
}

// NewWorkOrderHandler creates a new work-order handler.
func NewWorkOrderHandler(orders db.WorkOrderCollection, publisher notify.Publisher) *WorkOrderHandler {
	return &WorkOrderHandler{
		orders:    orders,
		publisher: publisher,
		Now:       time.Now,
	}
}

// CreateOrderRequest is the POST /ordenes-trabajo body.
type CreateOrderRequest struct {
	Patente             string     `json:"patente"`
	DescripcionProblema string     `json:"descripcionProblema"`
	FechaHoraAgendada   *time.Time `json:"fechaHoraAgendada,omitempty"`
}

// UpdateOrderRequest is the PUT /ordenes-trabajo/{id} body.
type UpdateOrderRequest struct {
	Estado                 models.Estado `json:"estado,omitempty"`
	Accion                 string        `json:"accion,omitempty"`
	MecanicoAsignadoID     string        `json:"mecanicoAsignadoId,omitempty"`
	MecanicoAsignadoNombre string        `json:"mecanicoAsignadoNombre,omitempty"`
	RepuestosUsados        *string       `json:"repuestosUsados,omitempty"`
	NuevaFotoURL           string        `json:"nuevaFotoURL,omitempty"`
}

// List returns all work orders, newest first.
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.FindWorkOrders(r.Context(), bson.M{})
	if err != nil {
		respondInternal(w, "ordenes-trabajo", err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// Get returns one work order by id.
func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.FindWorkOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "ordenes-trabajo", "orden de trabajo no encontrada")
			return
		}
		respondInternal(w, "ordenes-trabajo", err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Create opens a new work order, in Agendado when a slot is booked. The slot
// is re-checked server-side so a conflicting booking fails with 409 instead
// of relying on the client's stale availability view.
func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "ordenes-trabajo", "JSON inválido")
		return
	}

	if req.Patente == "" || req.DescripcionProblema == "" {
		respondError(w, http.StatusBadRequest, "ordenes-trabajo",
			"faltan campos requeridos: patente, descripcionProblema")
		return
	}

	if req.FechaHoraAgendada != nil {
		t := *req.FechaHoraAgendada
		dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		sameDay, err := h.orders.FindScheduledBetween(r.Context(), dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			respondInternal(w, "ordenes-trabajo", err)
			return
		}
		if !scheduling.IsSlotFree(sameDay, t) {
			respondError(w, http.StatusConflict, "ordenes-trabajo", "el horario ya está ocupado")
			return
		}
	}

	order := workorder.NewWorkOrder(req.Patente, req.DescripcionProblema, req.FechaHoraAgendada, h.Now())
	id, err := h.orders.InsertWorkOrder(r.Context(), order)
	if err != nil {
		respondInternal(w, "ordenes-trabajo", err)
		return
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		order.ID = oid
	}

	metrics.OrdersCreatedTotal.Inc()
	h.publisher.PublishOrderEstado(&order)
	log.WithFields(log.Fields{
		"orden":   id,
		"patente": order.Patente,
		"estado":  order.Estado,
	}).Info("Work order created")

	respondJSON(w, http.StatusCreated, order)
}

// Update applies one lifecycle action to a work order. The body either names
// an explicit accion or requests a target estado, which is resolved to a
// mechanic action. The write is conditional on the estado the caller read.
func (h *WorkOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "ordenes-trabajo", "contexto de usuario no encontrado")
		return
	}

	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "ordenes-trabajo", "JSON inválido")
		return
	}

	id := chi.URLParam(r, "id")
	order, err := h.orders.FindWorkOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "ordenes-trabajo", "orden de trabajo no encontrada")
			return
		}
		respondInternal(w, "ordenes-trabajo", err)
		return
	}
	fromEstado := order.Estado

	act, reason := resolveAction(order, &req)
	if reason != "" {
		metrics.TransitionsRejectedTotal.Inc()
		respondError(w, http.StatusUnprocessableEntity, "ordenes-trabajo", reason)
		return
	}

	changed := false
	if act != "" {
		params := workorder.Params{
			MecanicoID:     req.MecanicoAsignadoID,
			MecanicoNombre: req.MecanicoAsignadoNombre,
		}
		if err := workorder.Transition(order, act, *claims, params, h.Now()); err != nil {
			var terr *workorder.TransitionError
			if errors.As(err, &terr) {
				metrics.TransitionsRejectedTotal.Inc()
				respondError(w, http.StatusUnprocessableEntity, "ordenes-trabajo", terr.Error())
				return
			}
			respondInternal(w, "ordenes-trabajo", err)
			return
		}
		changed = true
	}

	if req.RepuestosUsados != nil {
		if err := workorder.ActualizarRepuestos(order, *req.RepuestosUsados); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "ordenes-trabajo", err.Error())
			return
		}
		changed = true
	}

	if req.NuevaFotoURL != "" {
		if err := workorder.AgregarFoto(order, req.NuevaFotoURL); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "ordenes-trabajo", err.Error())
			return
		}
		changed = true
	}

	if !changed {
		metrics.TransitionsRejectedTotal.Inc()
		respondError(w, http.StatusUnprocessableEntity, "ordenes-trabajo",
			"la solicitud no contiene ninguna acción ni campo actualizable")
		return
	}

	if err := h.orders.UpdateWorkOrderIfEstado(r.Context(), id, fromEstado, *order); err != nil {
		switch {
		case errors.Is(err, db.ErrConflict):
			respondError(w, http.StatusConflict, "ordenes-trabajo",
				"la orden fue modificada por otro usuario; vuelva a cargarla")
		case errors.Is(err, db.ErrNotFound):
			respondError(w, http.StatusNotFound, "ordenes-trabajo", "orden de trabajo no encontrada")
		default:
			respondInternal(w, "ordenes-trabajo", err)
		}
		return
	}

	if act != "" {
		metrics.TransitionsTotal.WithLabelValues(string(act)).Inc()
		h.publisher.PublishOrderEstado(order)
		log.WithFields(log.Fields{
			"orden":  id,
			"accion": act,
			"de":     fromEstado,
			"a":      order.Estado,
			"actor":  claims.Username,
		}).Info("Work order transition")
	}

	respondJSON(w, http.StatusOK, order)
}

// resolveAction maps the update body onto a state-machine action. A target
// estado of En Progreso claims the order when it sits unassigned in the
// Pendiente pool.
func resolveAction(order *models.WorkOrder, req *UpdateOrderRequest) (workorder.Action, string) {
	if req.Accion != "" {
		switch act := workorder.Action(req.Accion); act {
		case workorder.ActionRegistrarLlegada, workorder.ActionAsignarTarea,
			workorder.ActionTomarOT, workorder.ActionIniciarTrabajo,
			workorder.ActionFinalizarTrabajo, workorder.ActionCierreAdministrativo,
			workorder.ActionAnularOT:
			return act, ""
		default:
			return "", "acción desconocida: " + req.Accion
		}
	}

	switch req.Estado {
	case "":
		return "", ""
	case models.EstadoEnProgreso:
		if order.Estado == models.EstadoPendiente && order.MecanicoAsignadoID == "" {
			return workorder.ActionTomarOT, ""
		}
		return workorder.ActionIniciarTrabajo, ""
	case models.EstadoFinalizado:
		return workorder.ActionFinalizarTrabajo, ""
	default:
		if !models.IsValidEstado(req.Estado) {
			return "", "estado inválido: " + string(req.Estado)
		}
		return "", "el estado " + string(req.Estado) + " no puede establecerse directamente"
	}
}

// BusySlots returns the occupied booking slots for a day (default today).
func (h *WorkOrderHandler) BusySlots(w http.ResponseWriter, r *http.Request) {
	day := h.Now()
	if fecha := r.URL.Query().Get("fecha"); fecha != "" {
		parsed, err := time.ParseInLocation("2006-01-02", fecha, day.Location())
		if err != nil {
			respondError(w, http.StatusBadRequest, "ordenes-trabajo", "fecha inválida, se espera AAAA-MM-DD")
			return
		}
		day = parsed
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	orders, err := h.orders.FindScheduledBetween(r.Context(), dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		respondInternal(w, "ordenes-trabajo", err)
		return
	}

	busy := scheduling.BusySlots(orders, day)
	respondJSON(w, http.StatusOK, map[string][]time.Time{"ocupados": busy})
}
