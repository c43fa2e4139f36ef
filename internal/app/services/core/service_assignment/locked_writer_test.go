package service_assignment

import (
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLockKey = "clinicdesk:lock:appointment:10:assignment"

func TestLockedAssignmentWriter(t *testing.T) {
	bearer := credential.NewBearer("token")

	t.Run("Writes under the lock and releases it", func(t *testing.T) {
		locker := new(mockLockerService)
		next := new(mockAssignmentSource)
		locker.On("TryLock", mock.Anything, testLockKey, 30*time.Second).Return(true, "owner-1", nil)
		locker.On("Unlock", mock.Anything, testLockKey, "owner-1").Return(nil)
		next.On("WriteAssignment", mock.Anything, bearer, int64(10), []int64{1}, true).Return(models.NewMoneyFromInt(5), nil)

		writer := NewLockedAssignmentWriter(next, locker, 30*time.Second, zap.NewNop())
		total, err := writer.WriteAssignment(context.Background(), bearer, 10, []int64{1}, true)

		require.NoError(t, err)
		assert.Equal(t, "5", total.String())
		locker.AssertExpectations(t)
		next.AssertExpectations(t)
	})

	t.Run("Lock held elsewhere is a conflict", func(t *testing.T) {
		locker := new(mockLockerService)
		next := new(mockAssignmentSource)
		locker.On("TryLock", mock.Anything, testLockKey, 30*time.Second).Return(false, "", nil)

		writer := NewLockedAssignmentWriter(next, locker, 30*time.Second, zap.NewNop())
		_, err := writer.WriteAssignment(context.Background(), bearer, 10, []int64{1}, true)

		assert.ErrorIs(t, err, exceptions.ErrKindConflict)
		next.AssertNotCalled(t, "WriteAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		locker.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Releases the lock when the write fails", func(t *testing.T) {
		locker := new(mockLockerService)
		next := new(mockAssignmentSource)
		writeErr := exceptions.ErrClinicAPIServerError(errors.New("500"), "service assignment")
		locker.On("TryLock", mock.Anything, testLockKey, 30*time.Second).Return(true, "owner-2", nil)
		locker.On("Unlock", mock.Anything, testLockKey, "owner-2").Return(nil)
		next.On("WriteAssignment", mock.Anything, bearer, int64(10), []int64{1}, true).Return(models.ZeroMoney, writeErr)

		writer := NewLockedAssignmentWriter(next, locker, 30*time.Second, zap.NewNop())
		_, err := writer.WriteAssignment(context.Background(), bearer, 10, []int64{1}, true)

		assert.ErrorIs(t, err, exceptions.ErrKindServer)
		locker.AssertExpectations(t)
	})
}
