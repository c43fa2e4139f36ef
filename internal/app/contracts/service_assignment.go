package contracts

import (
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/dto/requests"
	"clinicdesk-service/internal/pkg/dto/responses"
	"context"
)

type ServiceAssignmentUsecase interface {
	OpenFlow(ctx context.Context, bearer credential.Bearer, request *requests.OpenServiceAssignmentFlow) (*responses.ServiceAssignmentFlow, error)
	GetFlow(ctx context.Context, flowID string) (*responses.ServiceAssignmentFlow, error)
	ToggleService(ctx context.Context, flowID string, request *requests.ToggleService) (*responses.ServiceAssignmentFlow, error)
	SubmitAssignment(ctx context.Context, bearer credential.Bearer, flowID string) (*responses.ServiceAssignmentFlow, error)
	CloseFlow(ctx context.Context, flowID string) error
	FindReceiptsByAppointmentID(ctx context.Context, appointmentID int64) ([]models.ServiceAssignmentReceipt, error)
}

type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, receipt *models.ServiceAssignmentReceipt) error
}

type ReceiptRepository interface {
	InsertReceipt(ctx context.Context, receipt *models.ServiceAssignmentReceipt) error
	FindReceiptsByAppointmentID(ctx context.Context, appointmentID int64) ([]models.ServiceAssignmentReceipt, error)
}
