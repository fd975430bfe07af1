package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SolicitudEstado represents the lifecycle state of a driver request.
type SolicitudEstado string

const (
	SolicitudPendiente SolicitudEstado = "Pendiente"
	SolicitudProcesado SolicitudEstado = "Procesado"
)

// MaintenanceRequest is a maintenance request raised by a driver, later
// converted into a work order or rejected.
type MaintenanceRequest struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Patente             string             `bson:"patente" json:"patente"`
	DescripcionProblema string             `bson:"descripcionProblema" json:"descripcionProblema"`
	ChoferID            string             `bson:"choferId,omitempty" json:"choferId,omitempty"`
	ChoferNombre        string             `bson:"choferNombre,omitempty" json:"choferNombre,omitempty"`
	Estado              SolicitudEstado    `bson:"estado" json:"estado"`
	IDOTRelacionada     string             `bson:"id_ot_relacionada,omitempty" json:"id_ot_relacionada,omitempty"`
	FechaCreacion       time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
}
