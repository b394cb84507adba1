package services

import (
	"context"
	"errors"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
)

// storageErr classifies a repository or gateway failure. Errors that already
// carry a kind pass through unchanged.
func storageErr(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return apperrors.NewTimeoutError(msg, err)
	}
	return apperrors.NewStorageFailureError(msg, err)
}
