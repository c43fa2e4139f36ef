package appointments

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

	"go.uber.org/zap"
)

type appointmentClinicClient struct {
	Client *clinic_api.Client
	Log    *zap.Logger
}

func NewAppointmentClinicClient(client *clinic_api.Client, logger *zap.Logger) contracts.AppointmentSource {
	return &appointmentClinicClient{
		Client: client,
		Log:    logger,
	}
}

// FindAppointmentByID reads a single appointment. A missing appointment is
// reported as a not found error, never as an empty record.
func (c *appointmentClinicClient) FindAppointmentByID(ctx context.Context, bearer credential.Bearer, appointmentID int64) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("appointmentClinicClient.FindAppointmentByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	path := fmt.Sprintf("/%s/%d", constvars.ResourceAppointment, appointmentID)
	appointment := new(models.Appointment)
	err := c.Client.Get(ctx, bearer, path, constvars.ResourceAppointment, appointment)
	if err != nil {
		if errors.Is(err, exceptions.ErrKindNotFound) {
			err = exceptions.ErrClinicAPIAppointmentNotFound(err)
		}
		c.Log.Error("appointmentClinicClient.FindAppointmentByID error fetching appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if appointment.ID == 0 {
		err = exceptions.ErrClinicAPIDecodeResponse(errors.New("appointment without id"), constvars.ResourceAppointment)
		c.Log.Error("appointmentClinicClient.FindAppointmentByID empty appointment in response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	c.Log.Info("appointmentClinicClient.FindAppointmentByID succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	return appointment, nil
}
