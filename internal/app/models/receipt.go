package models

import "time"

// ServiceAssignmentReceipt records a successful submission. TotalAmount is
// the authoritative total returned by the clinic API.
type ServiceAssignmentReceipt struct {
	ID            string    `json:"id"`
	FlowID        string    `json:"flow_id"`
	AppointmentID int64     `json:"appointment_id"`
	Patient       Patient   `json:"patient"`
	ServiceIDs    []int64   `json:"service_ids"`
	TotalAmount   Money     `json:"total_amount"`
	ComputedTotal Money     `json:"computed_total"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

func (r *ServiceAssignmentReceipt) TotalsDiverge() bool {
	return !r.TotalAmount.Equal(r.ComputedTotal)
}
