package service_assignment

import (
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/credential"
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockAppointmentSource struct {
	mock.Mock
}

func (m *mockAppointmentSource) FindAppointmentByID(ctx context.Context, bearer credential.Bearer, appointmentID int64) (*models.Appointment, error) {
	args := m.Called(ctx, bearer, appointmentID)
	appointment, _ := args.Get(0).(*models.Appointment)
	return appointment, args.Error(1)
}

type mockCatalogSource struct {
	mock.Mock
}

func (m *mockCatalogSource) FindCatalog(ctx context.Context, bearer credential.Bearer) (*models.Catalog, error) {
	args := m.Called(ctx, bearer)
	catalog, _ := args.Get(0).(*models.Catalog)
	return catalog, args.Error(1)
}

type mockAssignmentSource struct {
	mock.Mock
}

func (m *mockAssignmentSource) FindAssignedServiceIDs(ctx context.Context, bearer credential.Bearer, appointmentID int64) ([]int64, error) {
	args := m.Called(ctx, bearer, appointmentID)
	serviceIDs, _ := args.Get(0).([]int64)
	return serviceIDs, args.Error(1)
}

func (m *mockAssignmentSource) WriteAssignment(ctx context.Context, bearer credential.Bearer, appointmentID int64, serviceIDs []int64, completed bool) (models.Money, error) {
	args := m.Called(ctx, bearer, appointmentID, serviceIDs, completed)
	return args.Get(0).(models.Money), args.Error(1)
}

type mockLockerService struct {
	mock.Mock
}

func (m *mockLockerService) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, expiration)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *mockLockerService) Unlock(ctx context.Context, key, lockValue string) error {
	args := m.Called(ctx, key, lockValue)
	return args.Error(0)
}

type mockReceiptPublisher struct {
	mock.Mock
}

func (m *mockReceiptPublisher) PublishReceipt(ctx context.Context, receipt *models.ServiceAssignmentReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

type mockReceiptRepository struct {
	mock.Mock
}

func (m *mockReceiptRepository) InsertReceipt(ctx context.Context, receipt *models.ServiceAssignmentReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *mockReceiptRepository) FindReceiptsByAppointmentID(ctx context.Context, appointmentID int64) ([]models.ServiceAssignmentReceipt, error) {
	args := m.Called(ctx, appointmentID)
	receipts, _ := args.Get(0).([]models.ServiceAssignmentReceipt)
	return receipts, args.Error(1)
}

func scenarioCatalog() *models.Catalog {
	return models.NewCatalog([]models.ServiceCatalogEntry{
		{ID: 1, Name: "Exam", Price: models.NewMoneyFromInt(100000), Type: "consult"},
		{ID: 2, Name: "Xray", Price: models.NewMoneyFromInt(200000), Type: "radiology"},
	})
}

func scenarioAppointment() *models.Appointment {
	return &models.Appointment{
		ID:     10,
		Date:   "2024-05-01",
		Time:   "09:30",
		Status: "scheduled",
		Patient: models.Patient{
			ID:   7,
			Name: "Siti",
		},
	}
}
