package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const AccesoTipoIngreso = "INGRESO"

// AccessRecord represents one physical vehicle entry through the gate.
// A record is open (vehicle still inside) while FechaSalida is unset.
type AccessRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Patente      string             `bson:"patente" json:"patente"`
	Tipo         string             `bson:"tipo" json:"tipo"`
	ChoferNombre string             `bson:"choferNombre,omitempty" json:"choferNombre,omitempty"`
	FechaIngreso time.Time          `bson:"fechaIngreso" json:"fechaIngreso"`
	FechaSalida  *time.Time         `bson:"fechaSalida,omitempty" json:"fechaSalida,omitempty"`
}

// IsOpen reports whether the vehicle is still inside the workshop.
func (r *AccessRecord) IsOpen() bool {
	return r.FechaSalida == nil
}
