package service_assignment

import (
	"clinicdesk-service/internal/app/config"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/dto/requests"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type usecaseFixture struct {
	*flowFixture
	publisher  *mockReceiptPublisher
	repository *mockReceiptRepository
	registry   *Registry
	usecase    *serviceAssignmentUsecase
}

func newUsecaseFixture(serverIDs []int64) *usecaseFixture {
	fixture := &usecaseFixture{
		flowFixture: newFlowFixture(),
		publisher:   new(mockReceiptPublisher),
		repository:  new(mockReceiptRepository),
		registry:    NewRegistry(zap.NewNop()),
	}
	fixture.appointments.On("FindAppointmentByID", mock.Anything, fixture.bearer, int64(10)).Return(scenarioAppointment(), nil)
	fixture.catalog.On("FindCatalog", mock.Anything, fixture.bearer).Return(scenarioCatalog(), nil)
	fixture.assignments.On("FindAssignedServiceIDs", mock.Anything, fixture.bearer, int64(10)).Return(serverIDs, nil)

	cfg := &config.InternalConfig{Flow: config.Flow{PublishReceipts: true, LoadTimeoutInSeconds: 30}}
	fixture.usecase = NewServiceAssignmentUsecase(
		fixture.registry,
		fixture.sources(),
		fixture.publisher,
		fixture.repository,
		cfg,
		zap.NewNop(),
	).(*serviceAssignmentUsecase)
	return fixture
}

func TestServiceAssignmentUsecaseFullFlow(t *testing.T) {
	fixture := newUsecaseFixture([]int64{1})
	ctx := context.Background()

	view, err := fixture.usecase.OpenFlow(ctx, fixture.bearer, &requests.OpenServiceAssignmentFlow{AppointmentID: 10})
	require.NoError(t, err)
	assert.False(t, view.Loading)
	assert.Equal(t, "Siti", view.Appointment.Patient.Name)
	assert.Len(t, view.Catalog, 2)
	assert.Equal(t, []int64{1}, view.SelectedServiceIDs)
	assert.Equal(t, "Idle", view.SubmissionState)

	opened, err := fixture.registry.Get(view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, opened.LoadTimeout)

	view, err = fixture.usecase.ToggleService(ctx, view.FlowID, &requests.ToggleService{ServiceID: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, view.SelectedServiceIDs)
	assert.Equal(t, "300000", view.DisplayedTotal.String())

	// the clinic applied a discount the catalog does not know about
	fixture.assignments.On("WriteAssignment", mock.Anything, fixture.bearer, int64(10), []int64{1, 2}, true).
		Return(models.NewMoneyFromInt(250000), nil).Once()
	fixture.publisher.On("PublishReceipt", mock.Anything, mock.MatchedBy(func(receipt *models.ServiceAssignmentReceipt) bool {
		return receipt.TotalAmount.Equal(models.NewMoneyFromInt(250000)) &&
			receipt.ComputedTotal.Equal(models.NewMoneyFromInt(300000)) &&
			receipt.Patient.Name == "Siti"
	})).Return(nil).Once()
	fixture.repository.On("InsertReceipt", mock.Anything, mock.AnythingOfType("*models.ServiceAssignmentReceipt")).Return(nil).Once()

	flowID := view.FlowID
	view, err = fixture.usecase.SubmitAssignment(ctx, fixture.bearer, flowID)
	require.NoError(t, err)
	assert.Equal(t, "Succeeded", view.SubmissionState)
	assert.Equal(t, "250000", view.DisplayedTotal.String())
	require.NotNil(t, view.AuthoritativeTotal)
	assert.True(t, view.TotalsDiverge)
	assert.True(t, view.Closed)

	fixture.publisher.AssertExpectations(t)
	fixture.repository.AssertExpectations(t)

	_, err = fixture.usecase.GetFlow(ctx, flowID)
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)
}

func TestServiceAssignmentUsecaseReceiptFailureKeepsSuccess(t *testing.T) {
	fixture := newUsecaseFixture([]int64{1})
	ctx := context.Background()

	view, err := fixture.usecase.OpenFlow(ctx, fixture.bearer, &requests.OpenServiceAssignmentFlow{AppointmentID: 10})
	require.NoError(t, err)

	fixture.assignments.On("WriteAssignment", mock.Anything, fixture.bearer, int64(10), []int64{1}, true).
		Return(models.NewMoneyFromInt(100000), nil).Once()
	fixture.publisher.On("PublishReceipt", mock.Anything, mock.Anything).Return(errors.New("channel closed"))
	fixture.repository.On("InsertReceipt", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	view, err = fixture.usecase.SubmitAssignment(ctx, fixture.bearer, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, "Succeeded", view.SubmissionState)
	assert.False(t, view.TotalsDiverge)
}

func TestServiceAssignmentUsecaseEmptySubmit(t *testing.T) {
	fixture := newUsecaseFixture([]int64{})
	ctx := context.Background()

	view, err := fixture.usecase.OpenFlow(ctx, fixture.bearer, &requests.OpenServiceAssignmentFlow{AppointmentID: 10})
	require.NoError(t, err)

	_, err = fixture.usecase.SubmitAssignment(ctx, fixture.bearer, view.FlowID)
	assert.ErrorIs(t, err, exceptions.ErrKindValidation)

	view, err = fixture.usecase.GetFlow(ctx, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, "Idle", view.SubmissionState)
	require.NotNil(t, view.LastError)
	assert.Equal(t, "validation error", view.LastError.Kind)
	fixture.publisher.AssertNotCalled(t, "PublishReceipt", mock.Anything, mock.Anything)
}

func TestServiceAssignmentUsecaseRejectsExpiredCredential(t *testing.T) {
	fixture := newUsecaseFixture([]int64{})
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "clinician-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = fixture.usecase.OpenFlow(context.Background(), credential.NewBearer(signed), &requests.OpenServiceAssignmentFlow{AppointmentID: 10})

	assert.ErrorIs(t, err, exceptions.ErrKindUnauthorized)
	assert.Equal(t, 0, fixture.registry.Len())
}

func TestServiceAssignmentUsecaseCloseFlow(t *testing.T) {
	fixture := newUsecaseFixture([]int64{1})
	ctx := context.Background()

	view, err := fixture.usecase.OpenFlow(ctx, fixture.bearer, &requests.OpenServiceAssignmentFlow{AppointmentID: 10})
	require.NoError(t, err)

	require.NoError(t, fixture.usecase.CloseFlow(ctx, view.FlowID))
	assert.ErrorIs(t, fixture.usecase.CloseFlow(ctx, view.FlowID), exceptions.ErrKindNotFound)

	_, err = fixture.usecase.ToggleService(ctx, view.FlowID, &requests.ToggleService{ServiceID: 1})
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)
}

func TestServiceAssignmentUsecaseFindReceipts(t *testing.T) {
	fixture := newUsecaseFixture(nil)
	receipts := []models.ServiceAssignmentReceipt{{ID: "r-1", AppointmentID: 10}}
	fixture.repository.On("FindReceiptsByAppointmentID", mock.Anything, int64(10)).Return(receipts, nil)

	found, err := fixture.usecase.FindReceiptsByAppointmentID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, receipts, found)
}
