package workorder

import (
	"testing"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func supervisor() models.Claims {
	return models.Claims{UserID: "s1", Username: "sergio", Nombre: "Sergio", Role: models.RoleSupervisor}
}

func mecanico() models.Claims {
	return models.Claims{UserID: "m1", Username: "juan", Nombre: "Juan", Role: models.RoleMecanico}
}

func admin() models.Claims {
	return models.Claims{UserID: "a1", Username: "ana", Nombre: "Ana", Role: models.RoleAdmin}
}

func guardia() models.Claims {
	return models.Claims{UserID: "g1", Username: "gloria", Nombre: "Gloria", Role: models.RoleGuardia}
}

func TestNewWorkOrder(t *testing.T) {
	o := NewWorkOrder("AB1234", "ruido motor", nil, now)
	assert.Equal(t, models.EstadoPendienteDiagnostico, o.Estado)
	assert.Equal(t, now, o.FechaCreacion)
	assert.Nil(t, o.FechaHoraAgendada)

	slot := now.Add(48 * time.Hour)
	o = NewWorkOrder("AB1234", "ruido motor", &slot, now)
	assert.Equal(t, models.EstadoAgendado, o.Estado)
	assert.Equal(t, slot, *o.FechaHoraAgendada)
}

func TestRegistrarLlegada(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoAgendado}

	err := Transition(o, ActionRegistrarLlegada, guardia(), Params{}, now)
	assert.NoError(t, err)
	assert.Equal(t, models.EstadoPendiente, o.Estado)
	assert.Equal(t, now, *o.FechaIngresoTaller)

	t.Run("only from Agendado", func(t *testing.T) {
		o := &models.WorkOrder{Estado: models.EstadoPendienteDiagnostico}
		err := Transition(o, ActionRegistrarLlegada, guardia(), Params{}, now)
		assert.Error(t, err)
		assert.Equal(t, models.EstadoPendienteDiagnostico, o.Estado)
	})

	t.Run("mechanic cannot register arrival", func(t *testing.T) {
		o := &models.WorkOrder{Estado: models.EstadoAgendado}
		err := Transition(o, ActionRegistrarLlegada, mecanico(), Params{}, now)
		assert.Error(t, err)
	})
}

func TestAsignarTarea(t *testing.T) {
	for _, from := range []models.Estado{models.EstadoPendienteDiagnostico, models.EstadoPendiente} {
		o := &models.WorkOrder{Estado: from}
		err := Transition(o, ActionAsignarTarea, supervisor(), Params{MecanicoID: "m1", MecanicoNombre: "Juan"}, now)
		assert.NoError(t, err)
		assert.Equal(t, models.EstadoAsignada, o.Estado)
		assert.Equal(t, "m1", o.MecanicoAsignadoID)
		assert.Equal(t, "Juan", o.MecanicoAsignadoNombre)
	}

	t.Run("requires mechanic id and name", func(t *testing.T) {
		o := &models.WorkOrder{Estado: models.EstadoPendiente}
		err := Transition(o, ActionAsignarTarea, supervisor(), Params{MecanicoID: "m1"}, now)
		assert.Error(t, err)
		assert.Equal(t, models.EstadoPendiente, o.Estado)
	})
}

func TestTomarOT(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoPendiente}

	err := Transition(o, ActionTomarOT, mecanico(), Params{}, now)
	assert.NoError(t, err)
	assert.Equal(t, models.EstadoEnProgreso, o.Estado)
	assert.Equal(t, "m1", o.MecanicoAsignadoID)
	assert.Equal(t, "Juan", o.MecanicoAsignadoNombre)

	t.Run("assigned order cannot be claimed", func(t *testing.T) {
		o := &models.WorkOrder{Estado: models.EstadoPendiente, MecanicoAsignadoID: "m2"}
		err := Transition(o, ActionTomarOT, mecanico(), Params{}, now)
		assert.Error(t, err)
		assert.Equal(t, "m2", o.MecanicoAsignadoID)
	})
}

func TestMechanicProgressAndFinish(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoAsignada, MecanicoAsignadoID: "m1", MecanicoAsignadoNombre: "Juan"}

	err := Transition(o, ActionIniciarTrabajo, mecanico(), Params{}, now)
	assert.NoError(t, err)
	assert.Equal(t, models.EstadoEnProgreso, o.Estado)
	// Assignment survives the transition.
	assert.Equal(t, "m1", o.MecanicoAsignadoID)

	err = Transition(o, ActionFinalizarTrabajo, mecanico(), Params{}, now)
	assert.NoError(t, err)
	assert.Equal(t, models.EstadoFinalizado, o.Estado)
}

func TestNoBackwardFromFinalizado(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoFinalizado}
	err := Transition(o, ActionIniciarTrabajo, mecanico(), Params{}, now)
	assert.Error(t, err)
	assert.IsType(t, &TransitionError{}, err)
	assert.Equal(t, models.EstadoFinalizado, o.Estado)
}

func TestCierreAdministrativo(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoFinalizado}

	err := Transition(o, ActionCierreAdministrativo, admin(), Params{}, now)
	assert.NoError(t, err)
	assert.Equal(t, models.EstadoCerrado, o.Estado)
	assert.Equal(t, now, *o.FechaCierreAdministrativo)

	t.Run("only admin closes", func(t *testing.T) {
		o := &models.WorkOrder{Estado: models.EstadoFinalizado}
		err := Transition(o, ActionCierreAdministrativo, supervisor(), Params{}, now)
		assert.Error(t, err)
	})

	t.Run("only from Finalizado", func(t *testing.T) {
		o := &models.WorkOrder{Estado: models.EstadoEnProgreso}
		err := Transition(o, ActionCierreAdministrativo, admin(), Params{}, now)
		assert.Error(t, err)
	})
}

func TestAnularOT(t *testing.T) {
	for _, from := range []models.Estado{models.EstadoAgendado, models.EstadoPendiente, models.EstadoEnProgreso, models.EstadoFinalizado} {
		o := &models.WorkOrder{Estado: from}
		err := Transition(o, ActionAnularOT, admin(), Params{}, now)
		assert.NoError(t, err, "from %s", from)
		assert.Equal(t, models.EstadoAnulado, o.Estado)
		assert.Equal(t, now, *o.FechaAnulacion)
	}

	t.Run("terminal states stay terminal", func(t *testing.T) {
		for _, from := range []models.Estado{models.EstadoCerrado, models.EstadoAnulado} {
			o := &models.WorkOrder{Estado: from}
			err := Transition(o, ActionAnularOT, admin(), Params{}, now)
			assert.Error(t, err, "from %s", from)
		}
	})
}

func TestTimestampsStampedOnce(t *testing.T) {
	earlier := now.Add(-time.Hour)
	o := &models.WorkOrder{Estado: models.EstadoAgendado, FechaIngresoTaller: &earlier}

	err := Transition(o, ActionRegistrarLlegada, guardia(), Params{}, now)
	assert.NoError(t, err)
	assert.Equal(t, earlier, *o.FechaIngresoTaller)
}

func TestAgregarFoto(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoEnProgreso}

	assert.NoError(t, AgregarFoto(o, "https://fotos/1.jpg"))
	assert.NoError(t, AgregarFoto(o, "https://fotos/2.jpg"))
	assert.Equal(t, []string{"https://fotos/1.jpg", "https://fotos/2.jpg"}, o.Fotos)

	// Re-adding an existing URL is idempotent.
	assert.NoError(t, AgregarFoto(o, "https://fotos/1.jpg"))
	assert.Len(t, o.Fotos, 2)

	t.Run("closed order rejects photos", func(t *testing.T) {
		o := &models.WorkOrder{Estado: models.EstadoCerrado}
		assert.Error(t, AgregarFoto(o, "https://fotos/3.jpg"))
	})
}

func TestActualizarRepuestos(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoEnProgreso, RepuestosUsados: "filtro de aceite"}

	assert.NoError(t, ActualizarRepuestos(o, "filtro de aceite, correa"))
	assert.Equal(t, "filtro de aceite, correa", o.RepuestosUsados)

	o.Estado = models.EstadoAnulado
	assert.Error(t, ActualizarRepuestos(o, "otra cosa"))
	assert.Equal(t, "filtro de aceite, correa", o.RepuestosUsados)
}

func TestAdminMayPerformAnyListedAction(t *testing.T) {
	o := &models.WorkOrder{Estado: models.EstadoAgendado}
	err := Transition(o, ActionRegistrarLlegada, admin(), Params{}, now)
	assert.NoError(t, err)
	assert.Equal(t, models.EstadoPendiente, o.Estado)
}

func TestUnknownCombinationsRejected(t *testing.T) {
	cases := []struct {
		from models.Estado
		act  Action
		role models.Claims
	}{
		{models.EstadoCerrado, ActionIniciarTrabajo, mecanico()},
		{models.EstadoAnulado, ActionFinalizarTrabajo, mecanico()},
		{models.EstadoPendienteDiagnostico, ActionTomarOT, mecanico()},
		{models.EstadoAgendado, ActionAsignarTarea, supervisor()},
		{models.EstadoPendiente, ActionFinalizarTrabajo, guardia()},
	}
	for _, c := range cases {
		o := &models.WorkOrder{Estado: c.from}
		err := Transition(o, c.act, c.role, Params{MecanicoID: "m1", MecanicoNombre: "Juan"}, now)
		assert.Error(t, err, "%s from %s", c.act, c.from)
		assert.Equal(t, c.from, o.Estado)
	}
}
