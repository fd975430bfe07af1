package db

import (
	"context"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccessCollection defines the interface for gate access records.
type AccessCollection interface {
	InsertAccessRecord(ctx context.Context, record models.AccessRecord) (string, error)
	FindAccessRecordByID(ctx context.Context, id string) (*models.AccessRecord, error)
	FindAccessRecords(ctx context.Context, filter bson.M) ([]models.AccessRecord, error)
	StampExit(ctx context.Context, id string, salida time.Time) error
}

// MongoAccessCollection implements AccessCollection for MongoDB.
type MongoAccessCollection struct {
	Collection *mongo.Collection
}

// InsertAccessRecord inserts a gate entry record.
func (c *MongoAccessCollection) InsertAccessRecord(ctx context.Context, record models.AccessRecord) (string, error) {
	res, err := c.Collection.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", ErrNotFound
	}
	return oid.Hex(), nil
}

// FindAccessRecordByID finds an access record by its id.
func (c *MongoAccessCollection) FindAccessRecordByID(ctx context.Context, id string) (*models.AccessRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var record models.AccessRecord
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAccessRecords queries access records, newest entry first.
func (c *MongoAccessCollection) FindAccessRecords(ctx context.Context, filter bson.M) ([]models.AccessRecord, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "fechaIngreso", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.AccessRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// StampExit sets fechaSalida once. A record already stamped, or missing,
// does not match the conditional filter.
func (c *MongoAccessCollection) StampExit(ctx context.Context, id string, salida time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "fechaSalida": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"fechaSalida": salida}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := c.Collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
