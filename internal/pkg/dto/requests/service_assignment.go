package requests

type OpenServiceAssignmentFlow struct {
	AppointmentID int64 `json:"appointment_id" validate:"required,gt=0"`
}

type ToggleService struct {
	ServiceID int64 `json:"service_id" validate:"required,gt=0"`
}
