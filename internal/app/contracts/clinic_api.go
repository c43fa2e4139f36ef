package contracts

import (
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/credential"
	"context"
)

type AppointmentSource interface {
	FindAppointmentByID(ctx context.Context, bearer credential.Bearer, appointmentID int64) (*models.Appointment, error)
}

type CatalogSource interface {
	FindCatalog(ctx context.Context, bearer credential.Bearer) (*models.Catalog, error)
}

// AssignmentSource reads and writes the services recorded against an appointment.
// WriteAssignment is never retried by implementations.
type AssignmentSource interface {
	FindAssignedServiceIDs(ctx context.Context, bearer credential.Bearer, appointmentID int64) ([]int64, error)
	WriteAssignment(ctx context.Context, bearer credential.Bearer, appointmentID int64, serviceIDs []int64, completed bool) (models.Money, error)
}
