package service_assignment

import (
	"clinicdesk-service/internal/app/config"
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/dto/requests"
	"clinicdesk-service/internal/pkg/dto/responses"
	"clinicdesk-service/internal/pkg/exceptions"
	"clinicdesk-service/internal/pkg/utils"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const receiptSideEffectTimeout = 10 * time.Second

type serviceAssignmentUsecase struct {
	Registry          *Registry
	Sources           FlowSources
	ReceiptPublisher  contracts.ReceiptPublisher
	ReceiptRepository contracts.ReceiptRepository
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
	now               func() time.Time
}

// NewServiceAssignmentUsecase wires the flow host. publisher and repository
// may be nil, in which case receipts are neither published nor stored.
func NewServiceAssignmentUsecase(
	registry *Registry,
	sources FlowSources,
	publisher contracts.ReceiptPublisher,
	repository contracts.ReceiptRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ServiceAssignmentUsecase {
	return &serviceAssignmentUsecase{
		Registry:          registry,
		Sources:           sources,
		ReceiptPublisher:  publisher,
		ReceiptRepository: repository,
		InternalConfig:    internalConfig,
		Log:               logger,
		now:               time.Now,
	}
}

func (uc *serviceAssignmentUsecase) OpenFlow(ctx context.Context, bearer credential.Bearer, request *requests.OpenServiceAssignmentFlow) (*responses.ServiceAssignmentFlow, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("serviceAssignmentUsecase.OpenFlow called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, request.AppointmentID),
	)

	if err := bearer.Validate(uc.now()); err != nil {
		uc.Log.Error("serviceAssignmentUsecase.OpenFlow rejected credential",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	flow := NewFlow(ctx, request.AppointmentID, uc.Sources, uc.Log)
	if uc.InternalConfig != nil {
		flow.LoadTimeout = time.Duration(uc.InternalConfig.Flow.LoadTimeoutInSeconds) * time.Second
	}
	uc.Registry.Add(flow)
	flow.Start(bearer)

	// the view is still useful while loading, so a request deadline is not an error
	if err := flow.Wait(ctx); err != nil {
		uc.Log.Warn("serviceAssignmentUsecase.OpenFlow returning before loads settled",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFlowIDKey, flow.ID),
			zap.Error(err),
		)
	}

	uc.Log.Info("serviceAssignmentUsecase.OpenFlow succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flow.ID),
		zap.Int(constvars.LoggingFlowCountKey, uc.Registry.Len()),
	)
	return buildFlowView(flow.Snapshot()), nil
}

func (uc *serviceAssignmentUsecase) GetFlow(ctx context.Context, flowID string) (*responses.ServiceAssignmentFlow, error) {
	flow, err := uc.Registry.Get(flowID)
	if err != nil {
		return nil, err
	}
	return buildFlowView(flow.Snapshot()), nil
}

func (uc *serviceAssignmentUsecase) ToggleService(ctx context.Context, flowID string, request *requests.ToggleService) (*responses.ServiceAssignmentFlow, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	flow, err := uc.Registry.Get(flowID)
	if err != nil {
		return nil, err
	}

	selected, err := flow.Toggle(request.ServiceID)
	if err != nil {
		uc.Log.Error("serviceAssignmentUsecase.ToggleService error toggling service",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFlowIDKey, flowID),
			zap.Int64(constvars.LoggingServiceIDKey, request.ServiceID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("serviceAssignmentUsecase.ToggleService succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flowID),
		zap.Int64(constvars.LoggingServiceIDKey, request.ServiceID),
		zap.Bool("selected", selected),
	)
	return buildFlowView(flow.Snapshot()), nil
}

// SubmitAssignment writes the selection once. On success the receipt is
// published and stored, and the flow is closed.
func (uc *serviceAssignmentUsecase) SubmitAssignment(ctx context.Context, bearer credential.Bearer, flowID string) (*responses.ServiceAssignmentFlow, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("serviceAssignmentUsecase.SubmitAssignment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flowID),
	)

	if err := bearer.Validate(uc.now()); err != nil {
		uc.Log.Error("serviceAssignmentUsecase.SubmitAssignment rejected credential",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	flow, err := uc.Registry.Get(flowID)
	if err != nil {
		return nil, err
	}

	_, err = flow.Submit(ctx, bearer)
	if err != nil {
		uc.Log.Error("serviceAssignmentUsecase.SubmitAssignment error submitting assignment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFlowIDKey, flowID),
			zap.Error(err),
		)
		return nil, err
	}

	snapshot := flow.Snapshot()
	if snapshot.TotalsDiverge() {
		uc.Log.Warn("serviceAssignmentUsecase.SubmitAssignment computed total differs from authoritative total",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingFlowIDKey, flowID),
			zap.String(constvars.LoggingComputedTotalKey, snapshot.ComputedTotal.String()),
			zap.String(constvars.LoggingAuthoritativeTotalKey, snapshot.AuthoritativeTotal.String()),
		)
	}

	receipt := uc.buildReceipt(snapshot)
	uc.recordReceipt(ctx, receipt)
	uc.Registry.Remove(flowID)

	utils.LogBusinessEvent(uc.Log, "service_assignment_submitted", requestID,
		zap.String(constvars.LoggingReceiptIDKey, receipt.ID),
		zap.Int64(constvars.LoggingAppointmentIDKey, receipt.AppointmentID),
		zap.Int64s(constvars.LoggingServiceIDsKey, receipt.ServiceIDs),
		zap.Bool("totals_diverge", receipt.TotalsDiverge()),
	)

	view := buildFlowView(snapshot)
	view.Closed = true

	uc.Log.Info("serviceAssignmentUsecase.SubmitAssignment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flowID),
		zap.String(constvars.LoggingAuthoritativeTotalKey, snapshot.AuthoritativeTotal.String()),
	)
	return view, nil
}

func (uc *serviceAssignmentUsecase) CloseFlow(ctx context.Context, flowID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !uc.Registry.Remove(flowID) {
		return exceptions.ErrFlowNotFound(errors.New("no open flow with this id"), flowID)
	}
	uc.Log.Info("serviceAssignmentUsecase.CloseFlow succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, flowID),
	)
	return nil
}

func (uc *serviceAssignmentUsecase) FindReceiptsByAppointmentID(ctx context.Context, appointmentID int64) ([]models.ServiceAssignmentReceipt, error) {
	if uc.ReceiptRepository == nil {
		return []models.ServiceAssignmentReceipt{}, nil
	}
	return uc.ReceiptRepository.FindReceiptsByAppointmentID(ctx, appointmentID)
}

func (uc *serviceAssignmentUsecase) buildReceipt(snapshot FlowSnapshot) *models.ServiceAssignmentReceipt {
	receipt := &models.ServiceAssignmentReceipt{
		ID:            uuid.NewString(),
		FlowID:        snapshot.ID,
		AppointmentID: snapshot.AppointmentID,
		ServiceIDs:    snapshot.Selection.IDs(),
		TotalAmount:   snapshot.AuthoritativeTotal,
		ComputedTotal: snapshot.ComputedTotal,
		SubmittedAt:   uc.now().UTC(),
	}
	if snapshot.Appointment != nil {
		receipt.Patient = snapshot.Appointment.Patient
	}
	return receipt
}

// recordReceipt publishes and stores the receipt. Failures are logged only;
// the submission already succeeded upstream.
func (uc *serviceAssignmentUsecase) recordReceipt(ctx context.Context, receipt *models.ServiceAssignmentReceipt) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	sideEffectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptSideEffectTimeout)
	defer cancel()

	var wg conc.WaitGroup
	if uc.ReceiptPublisher != nil && uc.InternalConfig.Flow.PublishReceipts {
		wg.Go(func() {
			_ = utils.LogOperation(uc.Log, "serviceAssignmentUsecase.recordReceipt publish", requestID, func() error {
				return uc.ReceiptPublisher.PublishReceipt(sideEffectCtx, receipt)
			})
		})
	}
	if uc.ReceiptRepository != nil {
		wg.Go(func() {
			_ = utils.LogOperation(uc.Log, "serviceAssignmentUsecase.recordReceipt store", requestID, func() error {
				return uc.ReceiptRepository.InsertReceipt(sideEffectCtx, receipt)
			})
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		uc.Log.Error("serviceAssignmentUsecase.recordReceipt recovered panic",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReceiptIDKey, receipt.ID),
			zap.Error(recovered.AsError()),
		)
	}
}
