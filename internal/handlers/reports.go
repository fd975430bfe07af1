package handlers

import (
	"net/http"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ReportHandler answers filtered work-order report queries.
type ReportHandler struct {
	orders db.WorkOrderCollection
}

// NewReportHandler creates a new report handler.
func NewReportHandler(orders db.WorkOrderCollection) *ReportHandler {
	return &ReportHandler{orders: orders}
}

// Get returns work orders matching ?estado&patente&fechaInicio&fechaFin.
// Dates bound fechaCreacion and are inclusive at day granularity.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := bson.M{}

	if estado := q.Get("estado"); estado != "" {
		if !models.IsValidEstado(models.Estado(estado)) {
			respondError(w, http.StatusBadRequest, "reportes", "estado inválido: "+estado)
			return
		}
		filter["estado"] = estado
	}
	if patente := q.Get("patente"); patente != "" {
		filter["patente"] = patente
	}

	rango := bson.M{}
	if inicio := q.Get("fechaInicio"); inicio != "" {
		t, err := time.ParseInLocation("2006-01-02", inicio, time.Local)
		if err != nil {
			respondError(w, http.StatusBadRequest, "reportes", "fechaInicio inválida, se espera AAAA-MM-DD")
			return
		}
		rango["$gte"] = t
	}
	if fin := q.Get("fechaFin"); fin != "" {
		t, err := time.ParseInLocation("2006-01-02", fin, time.Local)
		if err != nil {
			respondError(w, http.StatusBadRequest, "reportes", "fechaFin inválida, se espera AAAA-MM-DD")
			return
		}
		rango["$lt"] = t.AddDate(0, 0, 1)
	}
	if len(rango) > 0 {
		filter["fechaCreacion"] = rango
	}

	orders, err := h.orders.FindWorkOrders(r.Context(), filter)
	if err != nil {
		respondInternal(w, "reportes", err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}
