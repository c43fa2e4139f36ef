package service_assignment

import (
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// FlowSources are the collaborators a flow reads from and writes to.
type FlowSources struct {
	Appointments contracts.AppointmentSource
	Catalog      contracts.CatalogSource
	Assignments  contracts.AssignmentSource
	// Writer defaults to Assignments when nil.
	Writer AssignmentWriter
}

// FlowSnapshot is a consistent copy of a flow's state.
type FlowSnapshot struct {
	ID                 string
	AppointmentID      int64
	Loading            bool
	Appointment        *models.Appointment
	AppointmentErr     error
	Catalog            *models.Catalog
	CatalogErr         error
	AssignmentErr      error
	Selection          SelectionSet
	ComputedTotal      models.Money
	AuthoritativeTotal models.Money
	HasAuthoritative   bool
	SubmissionState    SubmissionState
	LastErr            error
}

// DisplayedTotal is the authoritative total once a submission succeeded and
// the computed total before that.
func (s FlowSnapshot) DisplayedTotal() models.Money {
	if s.HasAuthoritative {
		return s.AuthoritativeTotal
	}
	return s.ComputedTotal
}

func (s FlowSnapshot) TotalsDiverge() bool {
	return s.HasAuthoritative && !s.AuthoritativeTotal.Equal(s.ComputedTotal)
}

// Flow is one open service assignment screen. All state mutation happens
// under mu, and results of reads or writes that arrive after TearDown are dropped.
type Flow struct {
	ID            string
	AppointmentID int64

	ctx      context.Context
	cancel   context.CancelFunc
	tornDown atomic.Bool
	loaded   chan struct{}

	mu             sync.RWMutex
	loading        bool
	appointment    *models.Appointment
	appointmentErr error
	catalog        *models.Catalog
	catalogErr     error
	assignmentErr  error
	assignmentDone bool
	reconciler     *SelectionReconciler
	coordinator    *SubmissionCoordinator
	lastActivity   time.Time

	// LoadTimeout bounds the three initial reads. Zero means no deadline.
	LoadTimeout time.Duration

	sources FlowSources
	now     func() time.Time
	Log     *zap.Logger
}

// NewFlow creates a flow for appointmentID. parent supplies request scoped
// values only; the flow outlives the request that opened it.
func NewFlow(parent context.Context, appointmentID int64, sources FlowSources, logger *zap.Logger) *Flow {
	if sources.Writer == nil {
		sources.Writer = sources.Assignments
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))

	flow := &Flow{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		ctx:           ctx,
		cancel:        cancel,
		loaded:        make(chan struct{}),
		loading:       true,
		reconciler:    NewSelectionReconciler(),
		sources:       sources,
		now:           time.Now,
		Log:           logger,
	}
	flow.lastActivity = flow.now()
	flow.coordinator = NewSubmissionCoordinator(sources.Writer, flow.logTransition)
	return flow
}

// Load issues the three reads concurrently and blocks until all of them
// settled. Each read fails on its own without affecting the others.
func (f *Flow) Load(bearer credential.Bearer) {
	ctx := f.ctx
	if f.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.LoadTimeout)
		defer cancel()
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	f.Log.Info("serviceAssignmentFlow.Load called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, f.ID),
		zap.Int64(constvars.LoggingAppointmentIDKey, f.AppointmentID),
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		appointment, err := f.sources.Appointments.FindAppointmentByID(ctx, bearer, f.AppointmentID)
		f.applyAppointment(appointment, err)
	})
	wg.Go(func() {
		catalog, err := f.sources.Catalog.FindCatalog(ctx, bearer)
		f.applyCatalog(catalog, err)
	})
	wg.Go(func() {
		serviceIDs, err := f.sources.Assignments.FindAssignedServiceIDs(ctx, bearer, f.AppointmentID)
		f.applyAssignment(serviceIDs, err)
	})

	recovered := wg.WaitAndRecover()
	f.finishLoading(recovered)
}

// Start runs Load in the background.
func (f *Flow) Start(bearer credential.Bearer) {
	go f.Load(bearer)
}

// Wait blocks until loading finished or ctx is done.
func (f *Flow) Wait(ctx context.Context) error {
	select {
	case <-f.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Flow) applyAppointment(appointment *models.Appointment, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discard("appointment") {
		return
	}
	f.appointment, f.appointmentErr = appointment, err
}

func (f *Flow) applyCatalog(catalog *models.Catalog, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discard("catalog") {
		return
	}
	f.catalog, f.catalogErr = catalog, err
}

func (f *Flow) applyAssignment(serviceIDs []int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discard("assignment") {
		return
	}
	f.assignmentDone = true
	if err != nil {
		f.assignmentErr = err
		return
	}
	f.reconciler.Initialize(serviceIDs)
}

// finishLoading clears the loading flag. A read that panicked never applied
// a result, so it is reported as failed here. The catalog may come from the
// shared cache without touching the clinic API, so it is withheld whenever
// another read proved the credential unauthorized.
func (f *Flow) finishLoading(recovered *panics.Recovered) {
	defer close(f.loaded)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discard("loading") {
		return
	}

	if recovered != nil {
		panicErr := exceptions.ErrServerProcess(recovered.AsError())
		f.Log.Error("serviceAssignmentFlow.Load recovered panic",
			zap.String(constvars.LoggingFlowIDKey, f.ID),
			zap.Error(panicErr),
		)
		if f.appointment == nil && f.appointmentErr == nil {
			f.appointmentErr = panicErr
		}
		if f.catalog == nil && f.catalogErr == nil {
			f.catalogErr = panicErr
		}
		if !f.assignmentDone {
			f.assignmentErr = panicErr
		}
	}

	if f.catalog != nil {
		for _, err := range []error{f.appointmentErr, f.assignmentErr} {
			if errors.Is(err, exceptions.ErrKindUnauthorized) {
				f.catalog, f.catalogErr = nil, err
				break
			}
		}
	}

	f.loading = false
	f.lastActivity = f.now()
	f.Log.Info("serviceAssignmentFlow.Load settled",
		zap.String(constvars.LoggingFlowIDKey, f.ID),
		zap.Bool("appointment_loaded", f.appointment != nil),
		zap.Int(constvars.LoggingCatalogCountKey, f.catalog.Len()),
		zap.Int(constvars.LoggingSelectionCountKey, f.reconciler.Len()),
	)
}

// discard reports whether a result must be dropped because the flow is gone.
// Callers hold mu.
func (f *Flow) discard(result string) bool {
	if !f.tornDown.Load() {
		return false
	}
	f.Log.Debug("serviceAssignmentFlow discarding result after teardown",
		zap.String(constvars.LoggingFlowIDKey, f.ID),
		zap.String(constvars.LoggingDataKey, result),
	)
	return true
}

// Toggle flips serviceID in the selection.
func (f *Flow) Toggle(serviceID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkMutable(); err != nil {
		return false, err
	}

	selected := f.reconciler.Toggle(serviceID)
	f.lastActivity = f.now()
	return selected, nil
}

// Submit validates the selection and writes it once. The write is canceled
// when the flow is torn down, and a late result is not applied.
func (f *Flow) Submit(ctx context.Context, bearer credential.Bearer) (models.Money, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	f.mu.Lock()
	if err := f.checkMutable(); err != nil {
		f.mu.Unlock()
		return models.ZeroMoney, err
	}
	selection := f.reconciler.Selection()
	err := f.coordinator.Begin(selection)
	f.lastActivity = f.now()
	f.mu.Unlock()
	if err != nil {
		return models.ZeroMoney, err
	}

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(f.ctx, cancel)
	defer stop()

	f.Log.Info("serviceAssignmentFlow.Submit writing assignment",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingFlowIDKey, f.ID),
		zap.Int64s(constvars.LoggingServiceIDsKey, selection.IDs()),
	)
	total, writeErr := f.coordinator.Write(writeCtx, bearer, f.AppointmentID, selection)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discard("submission") {
		return models.ZeroMoney, exceptions.ErrFlowTornDown(writeErr)
	}
	f.lastActivity = f.now()
	return f.coordinator.Complete(total, writeErr)
}

// checkMutable guards toggles and submits. Callers hold mu.
func (f *Flow) checkMutable() error {
	if f.tornDown.Load() {
		return exceptions.ErrFlowTornDown(nil)
	}
	if f.loading {
		return exceptions.ErrFlowLoading(nil)
	}
	switch f.coordinator.State() {
	case SubmissionValidating, SubmissionSubmitting:
		return exceptions.ErrSubmissionInProgress(nil)
	case SubmissionSucceeded:
		return exceptions.ErrSubmissionSucceeded(nil)
	}
	return nil
}

func (f *Flow) Snapshot() FlowSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	selection := f.reconciler.Selection()
	authoritative, succeeded := f.coordinator.AuthoritativeTotal()
	return FlowSnapshot{
		ID:                 f.ID,
		AppointmentID:      f.AppointmentID,
		Loading:            f.loading,
		Appointment:        f.appointment,
		AppointmentErr:     f.appointmentErr,
		Catalog:            f.catalog,
		CatalogErr:         f.catalogErr,
		AssignmentErr:      f.assignmentErr,
		Selection:          selection,
		ComputedTotal:      Total(f.catalog, selection),
		AuthoritativeTotal: authoritative,
		HasAuthoritative:   succeeded,
		SubmissionState:    f.coordinator.State(),
		LastErr:            f.coordinator.LastError(),
	}
}

// TearDown cancels every in-flight call of the flow. It is safe to call more than once.
func (f *Flow) TearDown() {
	if f.tornDown.Swap(true) {
		return
	}
	f.cancel()
	f.Log.Info("serviceAssignmentFlow.TearDown flow closed",
		zap.String(constvars.LoggingFlowIDKey, f.ID),
		zap.Int64(constvars.LoggingAppointmentIDKey, f.AppointmentID),
	)
}

func (f *Flow) IsTornDown() bool {
	return f.tornDown.Load()
}

// IdleSince returns the time of the last load, toggle or submit.
func (f *Flow) IdleSince() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastActivity
}

func (f *Flow) logTransition(from, to SubmissionState, err error) {
	fields := []zap.Field{
		zap.String(constvars.LoggingFlowIDKey, f.ID),
		zap.String(constvars.LoggingPreviousStateKey, from.String()),
		zap.String(constvars.LoggingSubmissionStateKey, to.String()),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	f.Log.Debug(fmt.Sprintf("serviceAssignmentFlow submission %s -> %s", from, to), fields...)
}
