package db

import (
	"context"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RequestCollection defines the interface for driver maintenance requests.
type RequestCollection interface {
	InsertRequest(ctx context.Context, req models.MaintenanceRequest) (string, error)
	FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	FindRequests(ctx context.Context, filter bson.M) ([]models.MaintenanceRequest, error)
	DeleteRequest(ctx context.Context, id string) error
}

// RequestLinker converts a maintenance request into a work order. Both
// writes happen inside one transaction: the order insert and the request
// update commit together or not at all.
type RequestLinker interface {
	ConvertToOrder(ctx context.Context, requestID string, order models.WorkOrder) (string, error)
}

// MongoRequestCollection implements RequestCollection for MongoDB.
type MongoRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRequest inserts a maintenance request.
func (c *MongoRequestCollection) InsertRequest(ctx context.Context, req models.MaintenanceRequest) (string, error) {
	res, err := c.Collection.InsertOne(ctx, req)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", ErrNotFound
	}
	return oid.Hex(), nil
}

// FindRequestByID finds a maintenance request by its id.
func (c *MongoRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var req models.MaintenanceRequest
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindRequests queries maintenance requests, newest first.
func (c *MongoRequestCollection) FindRequests(ctx context.Context, filter bson.M) ([]models.MaintenanceRequest, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.MaintenanceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// DeleteRequest removes a request (driver rejection path).
func (c *MongoRequestCollection) DeleteRequest(ctx context.Context, id string) error {
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

// MongoRequestLinker implements RequestLinker with a Mongo session
// transaction.
type MongoRequestLinker struct {
	Client   *mongo.Client
	Orders   *mongo.Collection
	Requests *mongo.Collection
}

// ConvertToOrder inserts the work order and marks the request Procesado with
// a back-reference, atomically. Converting a request that is not Pendiente
// returns ErrConflict.
func (l *MongoRequestLinker) ConvertToOrder(ctx context.Context, requestID string, order models.WorkOrder) (string, error) {
	objectID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return "", ErrNotFound
	}

	session, err := l.Client.StartSession()
	if err != nil {
		return "", err
	}
	defer session.EndSession(ctx)

	txOpts := options.Transaction()
	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := l.Orders.InsertOne(sc, order)
		if err != nil {
			return nil, err
		}
		oid, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return nil, ErrNotFound
		}

		upd, err := l.Requests.UpdateOne(sc,
			bson.M{"_id": objectID, "estado": models.SolicitudPendiente},
			bson.M{"$set": bson.M{
				"estado":            models.SolicitudProcesado,
				"id_ot_relacionada": oid.Hex(),
			}},
		)
		if err != nil {
			return nil, err
		}
		if upd.MatchedCount == 0 {
			count, err := l.Requests.CountDocuments(sc, bson.M{"_id": objectID})
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrConflict
		}
		return oid.Hex(), nil
	}, txOpts)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
