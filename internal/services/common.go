// internal/services/common.go
package services

import (
	"context"
	"time"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/metrics"
	"github.com/javajoker/placement-backend/internal/utils"
)

const defaultStoreTimeout = 5 * time.Second

// Options are the lifecycle policy switches shared by the engine services.
type Options struct {
	StoreTimeout                time.Duration
	ExclusiveFacultyAllocation  bool
	AllowResubmitAfterRejection bool
	Now                         func() time.Time
}

func DefaultOptions() Options {
	return Options{
		StoreTimeout:               defaultStoreTimeout,
		ExclusiveFacultyAllocation: true,
	}
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = defaultStoreTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().UTC()
}

// bounded caps every store round trip so a stalled backend surfaces as
// Unavailable instead of hanging the request.
func (o Options) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.StoreTimeout)
}

func validate(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperror.Validation("invalid input").WithDetails(utils.GetValidationErrors(err))
	}
	return nil
}

// observe records the outcome of one engine operation. Call it deferred with
// a pointer to the named error result.
func observe(operation string, start time.Time, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = string(apperror.KindOf(*err))
	}
	metrics.Operations.WithLabelValues(operation, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
