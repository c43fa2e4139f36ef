package service_assignment

import (
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"sync"
)

type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionValidating
	SubmissionSubmitting
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "Idle"
	case SubmissionValidating:
		return "Validating"
	case SubmissionSubmitting:
		return "Submitting"
	case SubmissionSucceeded:
		return "Succeeded"
	case SubmissionFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// AssignmentWriter persists a selection and returns the authoritative total.
type AssignmentWriter interface {
	WriteAssignment(ctx context.Context, bearer credential.Bearer, appointmentID int64, serviceIDs []int64, completed bool) (models.Money, error)
}

// TransitionObserver is called on every state change while the coordinator
// lock is held. It must not call back into the coordinator.
type TransitionObserver func(from, to SubmissionState, err error)

// SubmissionCoordinator drives one flow's submission lifecycle:
//
//	Idle -> Validating -> Submitting -> Succeeded
//	                               \-> Failed -> Idle
//
// An empty selection goes from Validating straight back to Idle without any
// write. Succeeded is terminal.
type SubmissionCoordinator struct {
	mu                 sync.Mutex
	state              SubmissionState
	authoritativeTotal models.Money
	lastErr            error
	writer             AssignmentWriter
	observer           TransitionObserver
}

func NewSubmissionCoordinator(writer AssignmentWriter, observer TransitionObserver) *SubmissionCoordinator {
	return &SubmissionCoordinator{
		state:              SubmissionIdle,
		authoritativeTotal: models.ZeroMoney,
		writer:             writer,
		observer:           observer,
	}
}

func (c *SubmissionCoordinator) State() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AuthoritativeTotal returns the total reported by the clinic API and
// whether a submission has succeeded.
func (c *SubmissionCoordinator) AuthoritativeTotal() (models.Money, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authoritativeTotal, c.state == SubmissionSucceeded
}

func (c *SubmissionCoordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Begin validates selection and, if it is not empty, moves to Submitting.
func (c *SubmissionCoordinator) Begin(selection SelectionSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case SubmissionValidating, SubmissionSubmitting:
		return exceptions.ErrSubmissionInProgress(nil)
	case SubmissionSucceeded:
		return exceptions.ErrSubmissionSucceeded(nil)
	}

	c.transition(SubmissionValidating, nil)
	if selection.IsEmpty() {
		err := exceptions.ErrEmptySelection(nil)
		c.lastErr = err
		c.transition(SubmissionIdle, err)
		return err
	}

	c.lastErr = nil
	c.transition(SubmissionSubmitting, nil)
	return nil
}

// Write issues the single write of a submission started with Begin.
func (c *SubmissionCoordinator) Write(ctx context.Context, bearer credential.Bearer, appointmentID int64, selection SelectionSet) (models.Money, error) {
	if c.State() != SubmissionSubmitting {
		return models.ZeroMoney, exceptions.ErrServerProcess(errors.New("write issued outside of Submitting"))
	}
	return c.writer.WriteAssignment(ctx, bearer, appointmentID, selection.IDs(), true)
}

// Complete applies the outcome of Write. A failure passes through Failed
// back to Idle so the same selection can be submitted again.
func (c *SubmissionCoordinator) Complete(total models.Money, writeErr error) (models.Money, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != SubmissionSubmitting {
		return models.ZeroMoney, exceptions.ErrServerProcess(errors.New("completion without a submission in flight"))
	}

	if writeErr != nil {
		c.lastErr = writeErr
		c.transition(SubmissionFailed, writeErr)
		c.transition(SubmissionIdle, writeErr)
		return models.ZeroMoney, writeErr
	}

	c.authoritativeTotal = total
	c.transition(SubmissionSucceeded, nil)
	return total, nil
}

// Submit runs Begin, Write and Complete in order.
func (c *SubmissionCoordinator) Submit(ctx context.Context, bearer credential.Bearer, appointmentID int64, selection SelectionSet) (models.Money, error) {
	if err := c.Begin(selection); err != nil {
		return models.ZeroMoney, err
	}
	total, err := c.Write(ctx, bearer, appointmentID, selection)
	return c.Complete(total, err)
}

func (c *SubmissionCoordinator) transition(to SubmissionState, err error) {
	from := c.state
	c.state = to
	if c.observer != nil {
		c.observer(from, to, err)
	}
}
