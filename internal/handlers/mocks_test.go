package handlers

import (
	"context"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// MockWorkOrderCollection is a mock implementation of db.WorkOrderCollection
type MockWorkOrderCollection struct {
	mock.Mock
}

func (m *MockWorkOrderCollection) InsertWorkOrder(ctx context.Context, order models.WorkOrder) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockWorkOrderCollection) FindWorkOrderByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderCollection) FindWorkOrders(ctx context.Context, filter bson.M) ([]models.WorkOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderCollection) UpdateWorkOrderIfEstado(ctx context.Context, id string, expected models.Estado, order models.WorkOrder) error {
	args := m.Called(ctx, id, expected, order)
	return args.Error(0)
}

func (m *MockWorkOrderCollection) FindBlockingByPlate(ctx context.Context, patente string) (*models.WorkOrder, error) {
	args := m.Called(ctx, patente)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderCollection) StampSalidaTaller(ctx context.Context, patente string, salida time.Time) error {
	args := m.Called(ctx, patente, salida)
	return args.Error(0)
}

func (m *MockWorkOrderCollection) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.WorkOrder, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WorkOrder), args.Error(1)
}

// MockAccessCollection is a mock implementation of db.AccessCollection
type MockAccessCollection struct {
	mock.Mock
}

func (m *MockAccessCollection) InsertAccessRecord(ctx context.Context, record models.AccessRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *MockAccessCollection) FindAccessRecordByID(ctx context.Context, id string) (*models.AccessRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccessRecord), args.Error(1)
}

func (m *MockAccessCollection) FindAccessRecords(ctx context.Context, filter bson.M) ([]models.AccessRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AccessRecord), args.Error(1)
}

func (m *MockAccessCollection) StampExit(ctx context.Context, id string, salida time.Time) error {
	args := m.Called(ctx, id, salida)
	return args.Error(0)
}

// MockRequestCollection is a mock implementation of db.RequestCollection
type MockRequestCollection struct {
	mock.Mock
}

func (m *MockRequestCollection) InsertRequest(ctx context.Context, req models.MaintenanceRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

func (m *MockRequestCollection) FindRequests(ctx context.Context, filter bson.M) ([]models.MaintenanceRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRequest), args.Error(1)
}

func (m *MockRequestCollection) DeleteRequest(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRequestLinker is a mock implementation of db.RequestLinker
type MockRequestLinker struct {
	mock.Mock
}

func (m *MockRequestLinker) ConvertToOrder(ctx context.Context, requestID string, order models.WorkOrder) (string, error) {
	args := m.Called(ctx, requestID, order)
	return args.String(0), args.Error(1)
}
