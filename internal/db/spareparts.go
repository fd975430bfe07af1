package db

import (
	"context"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SparePartCollection defines the interface for spare-part catalog entries.
type SparePartCollection interface {
	InsertSparePart(ctx context.Context, part models.SparePart) (string, error)
	FindSpareParts(ctx context.Context, filter bson.M) ([]models.SparePart, error)
	DeleteSparePart(ctx context.Context, id string) error
}

// MongoSparePartCollection implements SparePartCollection for MongoDB.
type MongoSparePartCollection struct {
	Collection *mongo.Collection
}

// InsertSparePart inserts a spare part.
func (c *MongoSparePartCollection) InsertSparePart(ctx context.Context, part models.SparePart) (string, error) {
	part.CreatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, part)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", ErrNotFound
	}
	return oid.Hex(), nil
}

// FindSpareParts queries spare parts.
func (c *MongoSparePartCollection) FindSpareParts(ctx context.Context, filter bson.M) ([]models.SparePart, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var parts []models.SparePart
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// DeleteSparePart deletes a spare part by its id.
func (c *MongoSparePartCollection) DeleteSparePart(ctx context.Context, id string) error {
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
