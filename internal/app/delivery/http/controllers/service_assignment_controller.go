package controllers

import (
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/dto/requests"
	"clinicdesk-service/internal/pkg/exceptions"
	"clinicdesk-service/internal/pkg/utils"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

type ServiceAssignmentController struct {
	Log                      *zap.Logger
	ServiceAssignmentUsecase contracts.ServiceAssignmentUsecase
	RequestTimeout           time.Duration
}

func NewServiceAssignmentController(logger *zap.Logger, serviceAssignmentUsecase contracts.ServiceAssignmentUsecase, requestTimeout time.Duration) *ServiceAssignmentController {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &ServiceAssignmentController{
		Log:                      logger,
		ServiceAssignmentUsecase: serviceAssignmentUsecase,
		RequestTimeout:           requestTimeout,
	}
}

func (ctrl *ServiceAssignmentController) OpenFlow(w http.ResponseWriter, r *http.Request) {
	requestID, bearer, ok := ctrl.requestScope(w, r, "ServiceAssignmentController.OpenFlow")
	if !ok {
		return
	}

	request := new(requests.OpenServiceAssignmentFlow)
	err := utils.ParseAndValidateBody(r, request)
	if err != nil {
		ctrl.Log.Error("ServiceAssignmentController.OpenFlow invalid request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	result, err := ctrl.ServiceAssignmentUsecase.OpenFlow(ctx, bearer, request)
	if err != nil {
		ctrl.handleUsecaseError(w, "ServiceAssignmentController.OpenFlow", requestID, err)
		return
	}

	ctrl.Log.Info("ServiceAssignmentController.OpenFlow succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, result.FlowID),
		zap.Int64(constvars.LoggingAppointmentIDKey, result.AppointmentID),
	)
	w.Header().Set(constvars.HeaderLocation, r.URL.Path+"/"+result.FlowID)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.FlowOpenedSuccessMessage, result)
}

func (ctrl *ServiceAssignmentController) GetFlow(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := ctrl.requestScope(w, r, "ServiceAssignmentController.GetFlow")
	if !ok {
		return
	}
	flowID := chi.URLParam(r, constvars.URLParamFlowID)

	result, err := ctrl.ServiceAssignmentUsecase.GetFlow(r.Context(), flowID)
	if err != nil {
		ctrl.handleUsecaseError(w, "ServiceAssignmentController.GetFlow", requestID, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.FlowFetchedSuccessMessage, result)
}

func (ctrl *ServiceAssignmentController) ToggleService(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := ctrl.requestScope(w, r, "ServiceAssignmentController.ToggleService")
	if !ok {
		return
	}
	flowID := chi.URLParam(r, constvars.URLParamFlowID)

	request := new(requests.ToggleService)
	err := utils.ParseAndValidateBody(r, request)
	if err != nil {
		ctrl.Log.Error("ServiceAssignmentController.ToggleService invalid request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	result, err := ctrl.ServiceAssignmentUsecase.ToggleService(r.Context(), flowID, request)
	if err != nil {
		ctrl.handleUsecaseError(w, "ServiceAssignmentController.ToggleService", requestID, err)
		return
	}

	ctrl.Log.Info("ServiceAssignmentController.ToggleService succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flowID),
		zap.Int64(constvars.LoggingServiceIDKey, request.ServiceID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ServiceToggledSuccessMessage, result)
}

func (ctrl *ServiceAssignmentController) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	requestID, bearer, ok := ctrl.requestScope(w, r, "ServiceAssignmentController.SubmitAssignment")
	if !ok {
		return
	}
	flowID := chi.URLParam(r, constvars.URLParamFlowID)

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	result, err := ctrl.ServiceAssignmentUsecase.SubmitAssignment(ctx, bearer, flowID)
	if err != nil {
		ctrl.handleUsecaseError(w, "ServiceAssignmentController.SubmitAssignment", requestID, err)
		return
	}

	ctrl.Log.Info("ServiceAssignmentController.SubmitAssignment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flowID),
		zap.Int64(constvars.LoggingAppointmentIDKey, result.AppointmentID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AssignmentSavedSuccessMessage, result)
}

func (ctrl *ServiceAssignmentController) CloseFlow(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := ctrl.requestScope(w, r, "ServiceAssignmentController.CloseFlow")
	if !ok {
		return
	}
	flowID := chi.URLParam(r, constvars.URLParamFlowID)

	err := ctrl.ServiceAssignmentUsecase.CloseFlow(r.Context(), flowID)
	if err != nil {
		ctrl.handleUsecaseError(w, "ServiceAssignmentController.CloseFlow", requestID, err)
		return
	}

	ctrl.Log.Info("ServiceAssignmentController.CloseFlow succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flowID),
	)
	w.WriteHeader(constvars.StatusNoContent)
}

func (ctrl *ServiceAssignmentController) FindReceiptsByAppointmentID(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := ctrl.requestScope(w, r, "ServiceAssignmentController.FindReceiptsByAppointmentID")
	if !ok {
		return
	}

	appointmentID, err := utils.ParseInt64URLParam(r, constvars.URLParamAppointmentID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.RequestTimeout)
	defer cancel()

	result, err := ctrl.ServiceAssignmentUsecase.FindReceiptsByAppointmentID(ctx, appointmentID)
	if err != nil {
		ctrl.handleUsecaseError(w, "ServiceAssignmentController.FindReceiptsByAppointmentID", requestID, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ReceiptsFetchedSuccessMessage, result)
}

// requestScope pulls the request id and bearer placed by the middlewares.
func (ctrl *ServiceAssignmentController) requestScope(w http.ResponseWriter, r *http.Request, operation string) (string, credential.Bearer, bool) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error(operation + " requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return "", credential.Bearer{}, false
	}

	bearer, ok := r.Context().Value(constvars.CONTEXT_CREDENTIAL_KEY).(credential.Bearer)
	if !ok || bearer.IsZero() {
		ctrl.Log.Error(operation+" bearer not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrTokenMissing(nil))
		return "", credential.Bearer{}, false
	}

	ctrl.Log.Info(operation+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return requestID, bearer, true
}

func (ctrl *ServiceAssignmentController) handleUsecaseError(w http.ResponseWriter, operation, requestID string, err error) {
	ctrl.Log.Error(operation+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) && exceptions.KindOf(err) == nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}
