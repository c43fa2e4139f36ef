package routers

import (
	"clinicdesk-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachServiceAssignmentRoutes(router chi.Router, serviceAssignmentController *controllers.ServiceAssignmentController) {
	router.Route("/flows", func(r chi.Router) {
		r.Post("/", serviceAssignmentController.OpenFlow)
		r.Get("/{flow_id}", serviceAssignmentController.GetFlow)
		r.Post("/{flow_id}/toggle", serviceAssignmentController.ToggleService)
		r.Post("/{flow_id}/submit", serviceAssignmentController.SubmitAssignment)
		r.Delete("/{flow_id}", serviceAssignmentController.CloseFlow)
	})
	router.Get("/appointments/{appointment_id}/receipts", serviceAssignmentController.FindReceiptsByAppointmentID)
}
