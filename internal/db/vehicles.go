package db

import (
	"context"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehicleByPlate(ctx context.Context, patente string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	vehicle.CreatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, vehicle)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", ErrNotFound
	}
	return oid.Hex(), nil
}

// FindVehicles queries vehicle records from the collection.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindVehicleByPlate finds a vehicle by its license plate.
func (c *MongoVehicleCollection) FindVehicleByPlate(ctx context.Context, patente string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"patente": patente}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle updates a vehicle by its ID.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": vehicle})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
