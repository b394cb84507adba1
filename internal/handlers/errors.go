package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/dto"
	"github.com/SscSPs/resale_settlement/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidationsOnce sync.Once

// RegisterValidations installs the custom binding tags used by the request DTOs.
// Safe to call more than once.
func RegisterValidations() {
	registerValidationsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
				return domain.PaymentMethodCode(fl.Field().String()).IsValid()
			})
		}
	})
}

// bindError converts a binding failure into an AppError.
func bindError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "payment_method" {
				return apperrors.NewInvalidPaymentMethodError(fmt.Sprint(fe.Value()))
			}
		}
		fe := verrs[0]
		return apperrors.NewValidationError(fmt.Sprintf("field %s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return apperrors.NewValidationError("invalid request format: " + err.Error())
}

// writeError renders err with the status of its kind. Errors outside the
// AppError taxonomy are reported as StorageFailure without their cause.
func writeError(c *gin.Context, logger *slog.Logger, op string, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewStorageFailureError("", err)
	}

	status := appErr.Kind.HTTPStatus()
	attrs := []any{slog.String("kind", string(appErr.Kind)), slog.String("error", err.Error())}
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", attrs...)
	} else {
		logger.Warn(op+" rejected", attrs...)
	}
	c.JSON(status, dto.ToErrorResponse(appErr))
}

// actorOrAbort returns the authenticated actor, writing 401 when absent.
func actorOrAbort(c *gin.Context, logger *slog.Logger) (string, bool) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Unauthorized", "Unauthorized", ""))
		return "", false
	}
	return actorID, true
}
