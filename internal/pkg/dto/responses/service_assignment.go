package responses

import "clinicdesk-service/internal/app/models"

// FlowError describes why one part of a flow is unavailable.
type FlowError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ServiceAssignmentFlow struct {
	FlowID             string                       `json:"flow_id"`
	AppointmentID      int64                        `json:"appointment_id"`
	Loading            bool                         `json:"loading"`
	Appointment        *models.Appointment          `json:"appointment,omitempty"`
	AppointmentError   *FlowError                   `json:"appointment_error,omitempty"`
	Catalog            []models.ServiceCatalogEntry `json:"catalog"`
	CatalogError       *FlowError                   `json:"catalog_error,omitempty"`
	AssignmentError    *FlowError                   `json:"assignment_error,omitempty"`
	SelectedServiceIDs []int64                      `json:"selected_service_ids"`
	ComputedTotal      models.Money                 `json:"computed_total"`
	AuthoritativeTotal *models.Money                `json:"authoritative_total,omitempty"`
	DisplayedTotal     models.Money                 `json:"displayed_total"`
	TotalsDiverge      bool                         `json:"totals_diverge"`
	SubmissionState    string                       `json:"submission_state"`
	LastError          *FlowError                   `json:"last_error,omitempty"`
	Closed             bool                         `json:"closed"`
}
