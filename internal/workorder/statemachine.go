package workorder

import (
	"fmt"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
)

// Action identifies a work-order lifecycle action as it appears on the wire.
type Action string

const (
	ActionRegistrarLlegada     Action = "registrarLlegada"
	ActionAsignarTarea         Action = "asignarTarea"
	ActionTomarOT              Action = "tomarOT"
	ActionIniciarTrabajo       Action = "iniciarTrabajo"
	ActionFinalizarTrabajo     Action = "finalizarTrabajo"
	ActionCierreAdministrativo Action = "cierreAdministrativo"
	ActionAnularOT             Action = "anularOT"
)

// Params carries the extra fields some actions require.
type Params struct {
	MecanicoID     string
	MecanicoNombre string
}

// TransitionError reports a combination of state, action and actor that the
// transition table does not allow.
type TransitionError struct {
	From   models.Estado
	Action Action
	Role   models.Role
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transición inválida: %s desde %q (%s)", e.Action, e.From, e.Reason)
	}
	return fmt.Sprintf("transición inválida: %s desde %q para rol %q", e.Action, e.From, e.Role)
}

// rule describes one row of the transition table: which source states and
// actor roles may perform the action, and the resulting state.
type rule struct {
	from  []models.Estado
	roles []models.Role
	to    models.Estado
}

// anyOpen marks actions allowed from every non-terminal state.
var anyOpen = []models.Estado{
	models.EstadoPendienteDiagnostico,
	models.EstadoAgendado,
	models.EstadoPendiente,
	models.EstadoAsignada,
	models.EstadoEnProgreso,
	models.EstadoFinalizado,
}

var transitions = map[Action]rule{
	ActionRegistrarLlegada: {
		from:  []models.Estado{models.EstadoAgendado},
		roles: []models.Role{models.RoleGuardia},
		to:    models.EstadoPendiente,
	},
	ActionAsignarTarea: {
		from:  []models.Estado{models.EstadoPendienteDiagnostico, models.EstadoPendiente},
		roles: []models.Role{models.RoleSupervisor},
		to:    models.EstadoAsignada,
	},
	ActionTomarOT: {
		from:  []models.Estado{models.EstadoPendiente},
		roles: []models.Role{models.RoleMecanico},
		to:    models.EstadoEnProgreso,
	},
	ActionIniciarTrabajo: {
		from:  []models.Estado{models.EstadoAsignada, models.EstadoEnProgreso},
		roles: []models.Role{models.RoleMecanico},
		to:    models.EstadoEnProgreso,
	},
	ActionFinalizarTrabajo: {
		from:  []models.Estado{models.EstadoAsignada, models.EstadoEnProgreso},
		roles: []models.Role{models.RoleMecanico},
		to:    models.EstadoFinalizado,
	},
	ActionCierreAdministrativo: {
		from:  []models.Estado{models.EstadoFinalizado},
		roles: []models.Role{models.RoleAdmin},
		to:    models.EstadoCerrado,
	},
	ActionAnularOT: {
		from:  anyOpen,
		roles: []models.Role{models.RoleAdmin},
		to:    models.EstadoAnulado,
	},
}

// CanTransition reports whether the table allows the actor to apply the
// action from the given state. Admins may perform any listed action.
func CanTransition(from models.Estado, act Action, role models.Role) bool {
	r, ok := transitions[act]
	if !ok {
		return false
	}
	if !containsEstado(r.from, from) {
		return false
	}
	return role == models.RoleAdmin || containsRole(r.roles, role)
}

// Transition applies an action to the order, stamping each milestone
// timestamp at most once. The order is only mutated when the transition is
// legal; otherwise a *TransitionError describes the rejection.
func Transition(o *models.WorkOrder, act Action, actor models.Claims, p Params, now time.Time) error {
	if o == nil {
		return fmt.Errorf("work order is nil")
	}
	from := o.Estado

	if !CanTransition(from, act, actor.Role) {
		return &TransitionError{From: from, Action: act, Role: actor.Role}
	}

	switch act {
	case ActionAsignarTarea:
		if p.MecanicoID == "" || p.MecanicoNombre == "" {
			return &TransitionError{From: from, Action: act, Role: actor.Role,
				Reason: "se requieren mecanicoAsignadoId y mecanicoAsignadoNombre"}
		}
	case ActionTomarOT:
		// Only an unassigned pooled order can be claimed.
		if o.MecanicoAsignadoID != "" {
			return &TransitionError{From: from, Action: act, Role: actor.Role,
				Reason: "la orden ya tiene mecánico asignado"}
		}
	}

	o.Estado = transitions[act].to

	switch act {
	case ActionRegistrarLlegada:
		if o.FechaIngresoTaller == nil {
			t := now
			o.FechaIngresoTaller = &t
		}
	case ActionAsignarTarea:
		o.MecanicoAsignadoID = p.MecanicoID
		o.MecanicoAsignadoNombre = p.MecanicoNombre
	case ActionTomarOT:
		o.MecanicoAsignadoID = actor.UserID
		o.MecanicoAsignadoNombre = actor.Nombre
	case ActionCierreAdministrativo:
		if o.FechaCierreAdministrativo == nil {
			t := now
			o.FechaCierreAdministrativo = &t
		}
	case ActionAnularOT:
		if o.FechaAnulacion == nil {
			t := now
			o.FechaAnulacion = &t
		}
	}
	return nil
}

// NewWorkOrder builds an order in its entry state: Agendado when a slot is
// booked, Pendiente Diagnóstico otherwise.
func NewWorkOrder(patente, descripcion string, agendada *time.Time, now time.Time) models.WorkOrder {
	o := models.WorkOrder{
		Patente:             patente,
		DescripcionProblema: descripcion,
		Estado:              models.EstadoPendienteDiagnostico,
		FechaCreacion:       now,
	}
	if agendada != nil {
		t := *agendada
		o.Estado = models.EstadoAgendado
		o.FechaHoraAgendada = &t
	}
	return o
}

// AgregarFoto appends a photo URL to an open order. Re-adding an URL the
// order already carries is a no-op.
func AgregarFoto(o *models.WorkOrder, url string) error {
	if !o.Estado.IsOpen() {
		return &TransitionError{From: o.Estado, Action: "agregarFoto",
			Reason: "la orden está cerrada"}
	}
	for _, f := range o.Fotos {
		if f == url {
			return nil
		}
	}
	o.Fotos = append(o.Fotos, url)
	return nil
}

// ActualizarRepuestos overwrites the free-text spare-parts field of an open
// order.
func ActualizarRepuestos(o *models.WorkOrder, texto string) error {
	if !o.Estado.IsOpen() {
		return &TransitionError{From: o.Estado, Action: "actualizarRepuestos",
			Reason: "la orden está cerrada"}
	}
	o.RepuestosUsados = texto
	return nil
}

func containsEstado(list []models.Estado, e models.Estado) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

func containsRole(list []models.Role, r models.Role) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}
