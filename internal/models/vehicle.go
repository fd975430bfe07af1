package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Patente          string             `bson:"patente" json:"patente"`
	Marca            string             `bson:"marca" json:"marca"`
	Modelo           string             `bson:"modelo" json:"modelo"`
	Anio             int                `bson:"anio" json:"anio"`
	IDChoferAsignado string             `bson:"id_chofer_asignado,omitempty" json:"id_chofer_asignado,omitempty"`
	Estado           string             `bson:"estado" json:"estado"` // "activo" or "inactivo"
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}
