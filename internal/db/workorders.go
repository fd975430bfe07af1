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

// WorkOrderCollection defines the interface for work-order operations.
type WorkOrderCollection interface {
	InsertWorkOrder(ctx context.Context, order models.WorkOrder) (string, error)
	FindWorkOrderByID(ctx context.Context, id string) (*models.WorkOrder, error)
	FindWorkOrders(ctx context.Context, filter bson.M) ([]models.WorkOrder, error)
	UpdateWorkOrderIfEstado(ctx context.Context, id string, expected models.Estado, order models.WorkOrder) error
	FindBlockingByPlate(ctx context.Context, patente string) (*models.WorkOrder, error)
	FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.WorkOrder, error)
	StampSalidaTaller(ctx context.Context, patente string, salida time.Time) error
}

// MongoWorkOrderCollection implements WorkOrderCollection for MongoDB.
type MongoWorkOrderCollection struct {
	Collection *mongo.Collection
}

// InsertWorkOrder inserts a work order and returns its generated id.
func (c *MongoWorkOrderCollection) InsertWorkOrder(ctx context.Context, order models.WorkOrder) (string, error) {
	res, err := c.Collection.InsertOne(ctx, order)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", ErrNotFound
	}
	return oid.Hex(), nil
}

// FindWorkOrderByID finds a work order by its id.
func (c *MongoWorkOrderCollection) FindWorkOrderByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var order models.WorkOrder
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindWorkOrders queries work orders, newest first.
func (c *MongoWorkOrderCollection) FindWorkOrders(ctx context.Context, filter bson.M) ([]models.WorkOrder, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.WorkOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateWorkOrderIfEstado replaces the document only while its stored estado
// still matches the one the caller read. A lost race returns ErrConflict
// instead of silently overwriting the winner.
func (c *MongoWorkOrderCollection) UpdateWorkOrderIfEstado(ctx context.Context, id string, expected models.Estado, order models.WorkOrder) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID, "estado": expected}, order)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing document from a concurrent estado change.
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

// FindBlockingByPlate returns a work order that blocks the vehicle's exit,
// or nil when none exists. The estado filter runs store-side instead of
// scanning the whole collection in application code.
func (c *MongoWorkOrderCollection) FindBlockingByPlate(ctx context.Context, patente string) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := c.Collection.FindOne(ctx, bson.M{
		"patente": patente,
		"estado":  bson.M{"$in": models.EstadosBloqueoSalida()},
	}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// StampSalidaTaller sets fechaSalidaTaller on the plate's open orders when
// the vehicle leaves the workshop. The estado is unchanged and each order is
// stamped at most once; orders already carrying the milestone do not match.
func (c *MongoWorkOrderCollection) StampSalidaTaller(ctx context.Context, patente string, salida time.Time) error {
	_, err := c.Collection.UpdateMany(ctx,
		bson.M{
			"patente":           patente,
			"estado":            bson.M{"$nin": []models.Estado{models.EstadoCerrado, models.EstadoAnulado}},
			"fechaSalidaTaller": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{"fechaSalidaTaller": salida}},
	)
	return err
}

// FindScheduledBetween returns open orders scheduled in [from, to).
func (c *MongoWorkOrderCollection) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.WorkOrder, error) {
	filter := bson.M{
		"estado":            bson.M{"$nin": []models.Estado{models.EstadoCerrado, models.EstadoAnulado}},
		"fechaHoraAgendada": bson.M{"$gte": from, "$lt": to},
	}
	return c.FindWorkOrders(ctx, filter)
}
