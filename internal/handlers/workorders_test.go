package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/middleware"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"github.com/pepsifleet/fleet-maintenance/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newOrderHandler(orders *MockWorkOrderCollection) *WorkOrderHandler {
	h := NewWorkOrderHandler(orders, notify.NopPublisher{})
	h.Now = func() time.Time { return testNow }
	return h
}

func requestAs(method, target string, body interface{}, claims *models.Claims, urlParams map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if claims != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), claims))
	}
	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range urlParams {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestWorkOrderCreate(t *testing.T) {
	planner := &models.Claims{UserID: "p1", Username: "paula", Role: models.RolePlanificador}

	t.Run("missing fields", func(t *testing.T) {
		orders := new(MockWorkOrderCollection)
		h := newOrderHandler(orders)

		rec := httptest.NewRecorder()
		h.Create(rec, requestAs(http.MethodPost, "/api/ordenes-trabajo",
			map[string]string{"patente": "AB1234"}, planner, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "faltan campos requeridos: patente, descripcionProblema", decodeError(t, rec))
		orders.AssertNotCalled(t, "InsertWorkOrder", mock.Anything, mock.Anything)
	})

	t.Run("without schedule starts in Pendiente Diagnóstico", func(t *testing.T) {
		orders := new(MockWorkOrderCollection)
		orders.On("InsertWorkOrder", mock.Anything, mock.Anything).Return(primitive.NewObjectID().Hex(), nil)
		h := newOrderHandler(orders)

		rec := httptest.NewRecorder()
		h.Create(rec, requestAs(http.MethodPost, "/api/ordenes-trabajo",
			map[string]string{"patente": "AB1234", "descripcionProblema": "ruido motor"}, planner, nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var created models.WorkOrder
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, models.EstadoPendienteDiagnostico, created.Estado)
		assert.Equal(t, testNow, created.FechaCreacion.UTC())
		orders.AssertExpectations(t)
	})

	t.Run("with schedule starts in Agendado", func(t *testing.T) {
		orders := new(MockWorkOrderCollection)
		orders.On("FindScheduledBetween", mock.Anything, mock.Anything, mock.Anything).Return([]models.WorkOrder{}, nil)
		orders.On("InsertWorkOrder", mock.Anything, mock.Anything).Return(primitive.NewObjectID().Hex(), nil)
		h := newOrderHandler(orders)

		slot := testNow.Add(2 * time.Hour)
		rec := httptest.NewRecorder()
		h.Create(rec, requestAs(http.MethodPost, "/api/ordenes-trabajo", map[string]interface{}{
			"patente":             "AB1234",
			"descripcionProblema": "mantención programada",
			"fechaHoraAgendada":   slot,
		}, planner, nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var created models.WorkOrder
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, models.EstadoAgendado, created.Estado)
	})

	t.Run("occupied slot rejected", func(t *testing.T) {
		slot := testNow.Add(2 * time.Hour)
		existing := models.WorkOrder{Estado: models.EstadoAgendado, FechaHoraAgendada: &slot}

		orders := new(MockWorkOrderCollection)
		orders.On("FindScheduledBetween", mock.Anything, mock.Anything, mock.Anything).Return([]models.WorkOrder{existing}, nil)
		h := newOrderHandler(orders)

		rec := httptest.NewRecorder()
		h.Create(rec, requestAs(http.MethodPost, "/api/ordenes-trabajo", map[string]interface{}{
			"patente":             "CD5678",
			"descripcionProblema": "mantención programada",
			"fechaHoraAgendada":   slot,
		}, planner, nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "el horario ya está ocupado", decodeError(t, rec))
		orders.AssertNotCalled(t, "InsertWorkOrder", mock.Anything, mock.Anything)
	})
}

func TestWorkOrderUpdatePoolClaim(t *testing.T) {
	id := primitive.NewObjectID()
	mec := &models.Claims{UserID: "m1", Username: "juan", Nombre: "Juan", Role: models.RoleMecanico}

	orders := new(MockWorkOrderCollection)
	orders.On("FindWorkOrderByID", mock.Anything, id.Hex()).
		Return(&models.WorkOrder{ID: id, Patente: "AB1234", Estado: models.EstadoPendiente}, nil)
	orders.On("UpdateWorkOrderIfEstado", mock.Anything, id.Hex(), models.EstadoPendiente,
		mock.MatchedBy(func(o models.WorkOrder) bool {
			return o.Estado == models.EstadoEnProgreso && o.MecanicoAsignadoID == "m1" && o.MecanicoAsignadoNombre == "Juan"
		})).Return(nil)

	h := newOrderHandler(orders)
	rec := httptest.NewRecorder()
	h.Update(rec, requestAs(http.MethodPut, "/api/ordenes-trabajo/"+id.Hex(),
		map[string]string{"estado": "En Progreso"}, mec, map[string]string{"id": id.Hex()}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var updated models.WorkOrder
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.EstadoEnProgreso, updated.Estado)
	assert.Equal(t, "m1", updated.MecanicoAsignadoID)
	orders.AssertExpectations(t)
}

func TestWorkOrderUpdateLostRace(t *testing.T) {
	id := primitive.NewObjectID()
	mec := &models.Claims{UserID: "m1", Username: "juan", Nombre: "Juan", Role: models.RoleMecanico}

	orders := new(MockWorkOrderCollection)
	orders.On("FindWorkOrderByID", mock.Anything, id.Hex()).
		Return(&models.WorkOrder{ID: id, Patente: "AB1234", Estado: models.EstadoPendiente}, nil)
	orders.On("UpdateWorkOrderIfEstado", mock.Anything, id.Hex(), models.EstadoPendiente, mock.Anything).
		Return(db.ErrConflict)

	h := newOrderHandler(orders)
	rec := httptest.NewRecorder()
	h.Update(rec, requestAs(http.MethodPut, "/api/ordenes-trabajo/"+id.Hex(),
		map[string]string{"estado": "En Progreso"}, mec, map[string]string{"id": id.Hex()}))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWorkOrderUpdateInvalidBody(t *testing.T) {
	id := primitive.NewObjectID()
	mec := &models.Claims{UserID: "m1", Username: "juan", Nombre: "Juan", Role: models.RoleMecanico}

	t.Run("unknown action", func(t *testing.T) {
		orders := new(MockWorkOrderCollection)
		orders.On("FindWorkOrderByID", mock.Anything, id.Hex()).
			Return(&models.WorkOrder{ID: id, Estado: models.EstadoPendiente}, nil)
		h := newOrderHandler(orders)

		rec := httptest.NewRecorder()
		h.Update(rec, requestAs(http.MethodPut, "/api/ordenes-trabajo/"+id.Hex(),
			map[string]string{"accion": "teletransportar"}, mec, map[string]string{"id": id.Hex()}))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("estado outside the enum", func(t *testing.T) {
		orders := new(MockWorkOrderCollection)
		orders.On("FindWorkOrderByID", mock.Anything, id.Hex()).
			Return(&models.WorkOrder{ID: id, Estado: models.EstadoPendiente}, nil)
		h := newOrderHandler(orders)

		rec := httptest.NewRecorder()
		h.Update(rec, requestAs(http.MethodPut, "/api/ordenes-trabajo/"+id.Hex(),
			map[string]string{"estado": "Volando"}, mec, map[string]string{"id": id.Hex()}))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		orders.AssertNotCalled(t, "UpdateWorkOrderIfEstado", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty body changes nothing", func(t *testing.T) {
		orders := new(MockWorkOrderCollection)
		orders.On("FindWorkOrderByID", mock.Anything, id.Hex()).
			Return(&models.WorkOrder{ID: id, Estado: models.EstadoPendiente}, nil)
		h := newOrderHandler(orders)

		rec := httptest.NewRecorder()
		h.Update(rec, requestAs(http.MethodPut, "/api/ordenes-trabajo/"+id.Hex(),
			map[string]string{}, mec, map[string]string{"id": id.Hex()}))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		orders.AssertNotCalled(t, "UpdateWorkOrderIfEstado", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

// TestWorkOrderFullLifecycle walks one order from creation to administrative
// close through the handler, carrying the stored document between steps the
// way the database would.
func TestWorkOrderFullLifecycle(t *testing.T) {
	id := primitive.NewObjectID()
	stored := models.WorkOrder{ID: id, Patente: "AB1234", DescripcionProblema: "ruido motor",
		Estado: models.EstadoPendienteDiagnostico, FechaCreacion: testNow}

	supervisor := &models.Claims{UserID: "s1", Username: "sergio", Nombre: "Sergio", Role: models.RoleSupervisor}
	mec := &models.Claims{UserID: "m1", Username: "juan", Nombre: "Juan", Role: models.RoleMecanico}
	admin := &models.Claims{UserID: "a1", Username: "ana", Nombre: "Ana", Role: models.RoleAdmin}

	step := func(t *testing.T, claims *models.Claims, body interface{}) models.WorkOrder {
		t.Helper()
		current := stored
		orders := new(MockWorkOrderCollection)
		orders.On("FindWorkOrderByID", mock.Anything, id.Hex()).Return(&current, nil)
		orders.On("UpdateWorkOrderIfEstado", mock.Anything, id.Hex(), current.Estado, mock.Anything).
			Run(func(args mock.Arguments) {
				stored = args.Get(3).(models.WorkOrder)
			}).Return(nil)

		h := newOrderHandler(orders)
		rec := httptest.NewRecorder()
		h.Update(rec, requestAs(http.MethodPut, "/api/ordenes-trabajo/"+id.Hex(), body, claims,
			map[string]string{"id": id.Hex()}))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return stored
	}

	got := step(t, supervisor, map[string]string{
		"accion":                 "asignarTarea",
		"mecanicoAsignadoId":     "m1",
		"mecanicoAsignadoNombre": "Juan",
	})
	assert.Equal(t, models.EstadoAsignada, got.Estado)
	assert.Equal(t, "m1", got.MecanicoAsignadoID)

	got = step(t, mec, map[string]string{"estado": "En Progreso"})
	assert.Equal(t, models.EstadoEnProgreso, got.Estado)
	assert.Equal(t, "m1", got.MecanicoAsignadoID, "assignment survives progress")
	assert.Equal(t, "Juan", got.MecanicoAsignadoNombre)

	got = step(t, mec, map[string]string{"estado": "Finalizado"})
	assert.Equal(t, models.EstadoFinalizado, got.Estado)

	got = step(t, admin, map[string]string{"accion": "cierreAdministrativo"})
	assert.Equal(t, models.EstadoCerrado, got.Estado)
	assert.NotNil(t, got.FechaCierreAdministrativo)
}

func TestBusySlotsEndpoint(t *testing.T) {
	planner := &models.Claims{UserID: "p1", Username: "paula", Role: models.RolePlanificador}
	booked := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)

	orders := new(MockWorkOrderCollection)
	orders.On("FindScheduledBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.WorkOrder{{Estado: models.EstadoAgendado, FechaHoraAgendada: &booked}}, nil)

	h := newOrderHandler(orders)
	rec := httptest.NewRecorder()
	h.BusySlots(rec, requestAs(http.MethodGet,
		"/api/ordenes-trabajo/horarios-ocupados?fecha=2025-06-02", nil, planner, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Ocupados []time.Time `json:"ocupados"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Ocupados, 2)
	assert.True(t, resp.Ocupados[0].Equal(booked))
	assert.True(t, resp.Ocupados[1].Equal(booked.Add(30*time.Minute)))
}
