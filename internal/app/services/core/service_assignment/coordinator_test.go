package service_assignment

import (
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transitionRecorder struct {
	mu          sync.Mutex
	transitions []string
}

func (r *transitionRecorder) observe(from, to SubmissionState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from.String()+"->"+to.String())
}

func (r *transitionRecorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.transitions...)
}

func TestSubmissionCoordinatorEmptySelection(t *testing.T) {
	writer := new(mockAssignmentSource)
	recorder := &transitionRecorder{}
	coordinator := NewSubmissionCoordinator(writer, recorder.observe)

	_, err := coordinator.Submit(context.Background(), credential.NewBearer("token"), 10, SelectionSet{})

	assert.ErrorIs(t, err, exceptions.ErrKindValidation)
	assert.Equal(t, SubmissionIdle, coordinator.State())
	assert.ErrorIs(t, coordinator.LastError(), exceptions.ErrKindValidation)
	assert.Equal(t, []string{"Idle->Validating", "Validating->Idle"}, recorder.list())
	writer.AssertNotCalled(t, "WriteAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionCoordinatorSuccess(t *testing.T) {
	writer := new(mockAssignmentSource)
	writer.On("WriteAssignment", mock.Anything, mock.Anything, int64(10), []int64{1, 2}, true).
		Return(models.NewMoneyFromInt(300000), nil).Once()
	recorder := &transitionRecorder{}
	coordinator := NewSubmissionCoordinator(writer, recorder.observe)

	total, err := coordinator.Submit(context.Background(), credential.NewBearer("token"), 10, NewSelectionSet(2, 1))
	require.NoError(t, err)

	assert.Equal(t, "300000", total.String())
	assert.Equal(t, SubmissionSucceeded, coordinator.State())
	authoritative, ok := coordinator.AuthoritativeTotal()
	assert.True(t, ok)
	assert.Equal(t, "300000", authoritative.String())
	assert.Equal(t, []string{"Idle->Validating", "Validating->Submitting", "Submitting->Succeeded"}, recorder.list())

	_, err = coordinator.Submit(context.Background(), credential.NewBearer("token"), 10, NewSelectionSet(1))
	assert.ErrorIs(t, err, exceptions.ErrKindConflict)
	writer.AssertNumberOfCalls(t, "WriteAssignment", 1)
}

func TestSubmissionCoordinatorFailureThenRetry(t *testing.T) {
	writer := new(mockAssignmentSource)
	networkErr := exceptions.ErrClinicAPIUnreachable(errors.New("connection refused"), "service assignment")
	writer.On("WriteAssignment", mock.Anything, mock.Anything, int64(10), []int64{1, 2}, true).
		Return(models.ZeroMoney, networkErr).Once()
	recorder := &transitionRecorder{}
	coordinator := NewSubmissionCoordinator(writer, recorder.observe)
	selection := NewSelectionSet(1, 2)

	_, err := coordinator.Submit(context.Background(), credential.NewBearer("token"), 10, selection)
	assert.ErrorIs(t, err, exceptions.ErrKindNetwork)
	assert.Equal(t, SubmissionIdle, coordinator.State())
	assert.Equal(t, []string{
		"Idle->Validating",
		"Validating->Submitting",
		"Submitting->Failed",
		"Failed->Idle",
	}, recorder.list())
	writer.AssertNumberOfCalls(t, "WriteAssignment", 1)

	writer.On("WriteAssignment", mock.Anything, mock.Anything, int64(10), []int64{1, 2}, true).
		Return(models.NewMoneyFromInt(300000), nil).Once()
	total, err := coordinator.Submit(context.Background(), credential.NewBearer("token"), 10, selection)
	require.NoError(t, err)
	assert.Equal(t, "300000", total.String())
	writer.AssertNumberOfCalls(t, "WriteAssignment", 2)
}

func TestSubmissionCoordinatorRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	writer := new(mockAssignmentSource)
	writer.On("WriteAssignment", mock.Anything, mock.Anything, int64(10), []int64{1}, true).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(models.NewMoneyFromInt(100000), nil).Once()
	coordinator := NewSubmissionCoordinator(writer, nil)

	done := make(chan error, 1)
	go func() {
		_, err := coordinator.Submit(context.Background(), credential.NewBearer("token"), 10, NewSelectionSet(1))
		done <- err
	}()

	<-started
	assert.Equal(t, SubmissionSubmitting, coordinator.State())
	_, err := coordinator.Submit(context.Background(), credential.NewBearer("token"), 10, NewSelectionSet(1))
	assert.ErrorIs(t, err, exceptions.ErrKindConflict)

	close(release)
	require.NoError(t, <-done)
	writer.AssertNumberOfCalls(t, "WriteAssignment", 1)
}
