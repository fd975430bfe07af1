package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SparePart represents an entry in the spare-parts catalog.
type SparePart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nombre    string             `bson:"nombre" json:"nombre"`
	Codigo    string             `bson:"codigo" json:"codigo"`
	Stock     int                `bson:"stock" json:"stock"`
	Precio    float64            `bson:"precio" json:"precio"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
