package assignments

import (
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/app/services/clinic_api"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var totalAmountPaths = []string{"total_amount", "totalAmount", "data.total_amount"}

type assignedService struct {
	ServiceID int64 `json:"service_id"`
}

type writeAssignmentRequest struct {
	ServiceIDs  []int64 `json:"service_ids"`
	IsCompleted bool    `json:"is_completed"`
}

type assignmentClinicClient struct {
	Client *clinic_api.Client
	Log    *zap.Logger
}

func NewAssignmentClinicClient(client *clinic_api.Client, logger *zap.Logger) contracts.AssignmentSource {
	return &assignmentClinicClient{
		Client: client,
		Log:    logger,
	}
}

func (c *assignmentClinicClient) FindAssignedServiceIDs(ctx context.Context, bearer credential.Bearer, appointmentID int64) ([]int64, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("assignmentClinicClient.FindAssignedServiceIDs called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	var assigned []assignedService
	err := c.Client.Get(ctx, bearer, assignmentPath(appointmentID), constvars.ResourceAssignedServices, &assigned)
	if err != nil {
		c.Log.Error("assignmentClinicClient.FindAssignedServiceIDs error fetching assigned services",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	serviceIDs := make([]int64, 0, len(assigned))
	for _, service := range assigned {
		serviceIDs = append(serviceIDs, service.ServiceID)
	}

	c.Log.Info("assignmentClinicClient.FindAssignedServiceIDs succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Int(constvars.LoggingSelectionCountKey, len(serviceIDs)),
	)
	return serviceIDs, nil
}

// WriteAssignment persists serviceIDs for the appointment and returns the
// total computed by the clinic API.
func (c *assignmentClinicClient) WriteAssignment(ctx context.Context, bearer credential.Bearer, appointmentID int64, serviceIDs []int64, completed bool) (models.Money, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("assignmentClinicClient.WriteAssignment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Int64s(constvars.LoggingServiceIDsKey, serviceIDs),
	)

	request := writeAssignmentRequest{
		ServiceIDs:  serviceIDs,
		IsCompleted: completed,
	}
	var response json.RawMessage
	err := c.Client.Post(ctx, bearer, assignmentPath(appointmentID), constvars.ResourceServiceAssignment, request, &response)
	if err != nil {
		c.Log.Error("assignmentClinicClient.WriteAssignment error writing assignment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return models.ZeroMoney, err
	}

	totalAmount, err := parseTotalAmount(response)
	if err != nil {
		err = exceptions.ErrClinicAPIDecodeResponse(err, constvars.ResourceServiceAssignment)
		c.Log.Error("assignmentClinicClient.WriteAssignment error parsing total amount",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return models.ZeroMoney, err
	}

	c.Log.Info("assignmentClinicClient.WriteAssignment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingAuthoritativeTotalKey, totalAmount.String()),
	)
	return totalAmount, nil
}

func assignmentPath(appointmentID int64) string {
	return fmt.Sprintf("/%s/%d/%s", constvars.ResourceAppointment, appointmentID, constvars.ResourceAssignedServices)
}

func parseTotalAmount(body []byte) (models.Money, error) {
	for _, path := range totalAmountPaths {
		result := gjson.GetBytes(body, path)
		switch result.Type {
		case gjson.Number:
			return decimal.NewFromString(result.Raw)
		case gjson.String:
			return decimal.NewFromString(result.Str)
		}
	}
	return models.ZeroMoney, errors.New("response has no total_amount")
}
