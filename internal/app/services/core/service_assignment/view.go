package service_assignment

import (
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/dto/responses"
	"clinicdesk-service/internal/pkg/exceptions"
	"errors"
)

func buildFlowView(snapshot FlowSnapshot) *responses.ServiceAssignmentFlow {
	view := &responses.ServiceAssignmentFlow{
		FlowID:             snapshot.ID,
		AppointmentID:      snapshot.AppointmentID,
		Loading:            snapshot.Loading,
		Appointment:        snapshot.Appointment,
		AppointmentError:   buildFlowError(snapshot.AppointmentErr),
		Catalog:            snapshot.Catalog.Entries(),
		CatalogError:       buildFlowError(snapshot.CatalogErr),
		AssignmentError:    buildFlowError(snapshot.AssignmentErr),
		SelectedServiceIDs: snapshot.Selection.IDs(),
		ComputedTotal:      snapshot.ComputedTotal,
		DisplayedTotal:     snapshot.DisplayedTotal(),
		TotalsDiverge:      snapshot.TotalsDiverge(),
		SubmissionState:    snapshot.SubmissionState.String(),
		LastError:          buildFlowError(snapshot.LastErr),
	}
	if snapshot.HasAuthoritative {
		authoritative := snapshot.AuthoritativeTotal
		view.AuthoritativeTotal = &authoritative
	}
	return view
}

func buildFlowError(err error) *responses.FlowError {
	if err == nil {
		return nil
	}

	flowError := &responses.FlowError{
		Kind:    constvars.ResponseUnknown,
		Message: constvars.ErrClientSomethingWrongWithApplication,
	}
	if kind := exceptions.KindOf(err); kind != nil {
		flowError.Kind = kind.Error()
	}
	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		flowError.Message = customErr.ClientMessage
	}
	return flowError
}
