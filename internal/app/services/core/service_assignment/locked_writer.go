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
	"time"

	"go.uber.org/zap"
)

// lockedAssignmentWriter serializes writes per appointment across flows and
// instances with a redis lock. A lock held elsewhere is a conflict.
type lockedAssignmentWriter struct {
	next   AssignmentWriter
	locker contracts.LockerService
	ttl    time.Duration
	Log    *zap.Logger
}

func NewLockedAssignmentWriter(next AssignmentWriter, locker contracts.LockerService, ttl time.Duration, logger *zap.Logger) AssignmentWriter {
	return &lockedAssignmentWriter{
		next:   next,
		locker: locker,
		ttl:    ttl,
		Log:    logger,
	}
}

func (w *lockedAssignmentWriter) WriteAssignment(ctx context.Context, bearer credential.Bearer, appointmentID int64, serviceIDs []int64, completed bool) (models.Money, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	key := fmt.Sprintf(constvars.RedisKeySubmissionLockFormat, appointmentID)

	acquired, lockValue, err := w.locker.TryLock(ctx, key, w.ttl)
	if err != nil {
		w.Log.Error("lockedAssignmentWriter.WriteAssignment error acquiring lock",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return models.ZeroMoney, err
	}
	if !acquired {
		err = exceptions.ErrSubmissionLocked(errors.New("lock held"), appointmentID)
		w.Log.Warn("lockedAssignmentWriter.WriteAssignment lock held by another submission",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, key),
		)
		return models.ZeroMoney, err
	}

	defer func() {
		// the write may have been canceled; release with a fresh context
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if unlockErr := w.locker.Unlock(unlockCtx, key, lockValue); unlockErr != nil {
			w.Log.Error("lockedAssignmentWriter.WriteAssignment error releasing lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, key),
				zap.Error(unlockErr),
			)
		}
	}()

	return w.next.WriteAssignment(ctx, bearer, appointmentID, serviceIDs, completed)
}
