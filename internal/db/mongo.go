package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document changed concurrently")
)

// ConnectMongo connects to MongoDB and verifies the connection.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles every collection accessor the handlers depend on.
type Collections struct {
	WorkOrders WorkOrderCollection
	Access     AccessCollection
	Requests   RequestCollection
	SpareParts SparePartCollection
	Vehicles   VehicleCollection
	Users      UserCollection
	Linker     RequestLinker
}

// NewCollections wires the Mongo implementations against a database.
func NewCollections(client *mongo.Client, dbName string) *Collections {
	database := client.Database(dbName)
	orders := database.Collection("ordenes-trabajo")
	requests := database.Collection("solicitudes")
	return &Collections{
		WorkOrders: &MongoWorkOrderCollection{Collection: orders},
		Access:     &MongoAccessCollection{Collection: database.Collection("registros-acceso")},
		Requests:   &MongoRequestCollection{Collection: requests},
		SpareParts: &MongoSparePartCollection{Collection: database.Collection("repuestos")},
		Vehicles:   &MongoVehicleCollection{Collection: database.Collection("vehiculos")},
		Users:      &MongoUserCollection{Collection: database.Collection("usuarios")},
		Linker:     &MongoRequestLinker{Client: client, Orders: orders, Requests: requests},
	}
}
