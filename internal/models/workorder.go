package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estado represents the lifecycle state of a work order.
type Estado string

const (
	EstadoPendienteDiagnostico Estado = "Pendiente Diagnóstico"
	EstadoAgendado             Estado = "Agendado"
	EstadoPendiente            Estado = "Pendiente"
	EstadoAsignada             Estado = "Asignada"
	EstadoEnProgreso           Estado = "En Progreso"
	EstadoFinalizado           Estado = "Finalizado"
	EstadoCerrado              Estado = "Cerrado"
	EstadoAnulado              Estado = "Anulado"
)

// WorkOrder represents a maintenance work order (OT).
type WorkOrder struct {
	ID                        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Patente                   string             `bson:"patente" json:"patente"`
	DescripcionProblema       string             `bson:"descripcionProblema" json:"descripcionProblema"`
	Estado                    Estado             `bson:"estado" json:"estado"`
	MecanicoAsignadoID        string             `bson:"mecanicoAsignadoId,omitempty" json:"mecanicoAsignadoId,omitempty"`
	MecanicoAsignadoNombre    string             `bson:"mecanicoAsignadoNombre,omitempty" json:"mecanicoAsignadoNombre,omitempty"`
	RepuestosUsados           string             `bson:"repuestosUsados,omitempty" json:"repuestosUsados,omitempty"`
	Fotos                     []string           `bson:"fotos,omitempty" json:"fotos,omitempty"`
	SolicitudID               string             `bson:"solicitudId,omitempty" json:"solicitudId,omitempty"`
	FechaCreacion             time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	FechaHoraAgendada         *time.Time         `bson:"fechaHoraAgendada,omitempty" json:"fechaHoraAgendada,omitempty"`
	FechaIngresoTaller        *time.Time         `bson:"fechaIngresoTaller,omitempty" json:"fechaIngresoTaller,omitempty"`
	FechaCierreAdministrativo *time.Time         `bson:"fechaCierreAdministrativo,omitempty" json:"fechaCierreAdministrativo,omitempty"`
	FechaAnulacion            *time.Time         `bson:"fechaAnulacion,omitempty" json:"fechaAnulacion,omitempty"`
	FechaSalidaTaller         *time.Time         `bson:"fechaSalidaTaller,omitempty" json:"fechaSalidaTaller,omitempty"`
}

// IsValidEstado checks if an estado is one of the enumerated values.
func IsValidEstado(e Estado) bool {
	switch e {
	case EstadoPendienteDiagnostico, EstadoAgendado, EstadoPendiente, EstadoAsignada,
		EstadoEnProgreso, EstadoFinalizado, EstadoCerrado, EstadoAnulado:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the order still occupies a scheduled slot.
func (e Estado) IsOpen() bool {
	return e != EstadoCerrado && e != EstadoAnulado
}

// BlocksExit reports whether the order prevents its vehicle from leaving
// the workshop.
func (e Estado) BlocksExit() bool {
	switch e {
	case EstadoAgendado, EstadoPendiente, EstadoEnProgreso:
		return true
	default:
		return false
	}
}

// EstadosBloqueoSalida lists the states that block a vehicle exit, for
// store-side filtering.
func EstadosBloqueoSalida() []Estado {
	return []Estado{EstadoAgendado, EstadoPendiente, EstadoEnProgreso}
}
