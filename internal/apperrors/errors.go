package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected failure in a lower layer.
var ErrInternal = errors.New("internal error")

// Kind is the machine-readable classification returned to API callers.
type Kind string

const (
	KindInvalidAmount           Kind = "InvalidAmount"
	KindInvalidRate             Kind = "InvalidRate"
	KindRateNotConfigured       Kind = "RateNotConfigured"
	KindNoPaymentMethodSelected Kind = "NoPaymentMethodSelected"
	KindEmptyOrder              Kind = "EmptyOrder"
	KindInventoryConflict       Kind = "InventoryConflict"
	KindDebtNotFound            Kind = "DebtNotFound"
	KindDebtAlreadySettled      Kind = "DebtAlreadySettled"
	KindStorageFailure          Kind = "StorageFailure"
	KindInvalidPaymentMethod    Kind = "InvalidPaymentMethod"
	KindDuplicateLineItem       Kind = "DuplicateLineItem"
	KindOrderNotFound           Kind = "OrderNotFound"
	KindTimeout                 Kind = "Timeout"
	KindValidation              Kind = "Validation"
	KindNotFound                Kind = "NotFound"
	KindDuplicate               Kind = "Duplicate"
)

// AppError carries a Kind plus the offending subject (method code, item ref, debt id)
// alongside the underlying cause.
type AppError struct {
	Code    int
	Kind    Kind
	Message string
	Subject string
	Items   []string
	Err     error
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Subject != "" {
		b.WriteString(" (")
		b.WriteString(e.Subject)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets callers keep using errors.Is with the generic sentinels
// (ErrValidation, ErrNotFound, ErrDuplicate, ErrInternal) as well as other
// AppErrors of the same kind.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return t.Kind == e.Kind
	}
	switch target {
	case ErrValidation:
		return e.Kind.IsValidation()
	case ErrNotFound:
		return e.Kind.IsNotFound()
	case ErrDuplicate:
		return e.Kind == KindDuplicate
	case ErrInternal:
		return e.Kind == KindStorageFailure
	}
	return false
}

// IsValidation reports whether the kind is a recoverable input error.
func (k Kind) IsValidation() bool {
	switch k {
	case KindInvalidAmount, KindInvalidRate, KindNoPaymentMethodSelected, KindEmptyOrder,
		KindInvalidPaymentMethod, KindDuplicateLineItem, KindValidation, KindRateNotConfigured:
		return true
	}
	return false
}

// IsNotFound reports whether the kind describes a missing resource.
func (k Kind) IsNotFound() bool {
	switch k {
	case KindDebtNotFound, KindOrderNotFound, KindNotFound:
		return true
	}
	return false
}

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindRateNotConfigured:
		return http.StatusUnprocessableEntity
	case KindInventoryConflict, KindDebtAlreadySettled, KindDuplicate:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindStorageFailure:
		return http.StatusInternalServerError
	}
	if k.IsNotFound() {
		return http.StatusNotFound
	}
	if k.IsValidation() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of the first AppError in the chain, falling back
// to the generic sentinels and finally StorageFailure.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	}
	return KindStorageFailure
}

// AsAppError extracts the first AppError in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func newKindError(kind Kind, subject, msg string) *AppError {
	return &AppError{Code: kind.HTTPStatus(), Kind: kind, Message: msg, Subject: subject}
}

// NewAppError builds an error from a status code. Any 5xx code is a StorageFailure.
func NewAppError(code int, msg string, err error) *AppError {
	kind := KindStorageFailure
	switch {
	case code == http.StatusNotFound:
		kind = KindNotFound
	case code == http.StatusConflict:
		kind = KindDuplicate
	case code >= 400 && code < 500:
		kind = KindValidation
	}
	return &AppError{Code: code, Kind: kind, Message: msg, Err: err}
}

// NewValidationError creates a generic validation error.
func NewValidationError(msg string) *AppError {
	return newKindError(KindValidation, "", msg)
}

// NewNotFoundError creates a generic not-found error.
func NewNotFoundError(msg string) *AppError {
	return newKindError(KindNotFound, "", msg)
}

// NewDuplicateError creates an error for a resource that already exists.
func NewDuplicateError(msg string) *AppError {
	return newKindError(KindDuplicate, "", msg)
}

func NewInvalidAmountError(subject, msg string) *AppError {
	return newKindError(KindInvalidAmount, subject, msg)
}

func NewInvalidRateError(subject, msg string) *AppError {
	return newKindError(KindInvalidRate, subject, msg)
}

func NewRateNotConfiguredError(clientID, methodCode string) *AppError {
	return newKindError(KindRateNotConfigured, methodCode,
		fmt.Sprintf("no exchange rate configured for client %s and method %s", clientID, methodCode))
}

func NewNoPaymentMethodSelectedError() *AppError {
	return newKindError(KindNoPaymentMethodSelected, "", "at least one payment method must be selected")
}

func NewEmptyOrderError() *AppError {
	return newKindError(KindEmptyOrder, "", "order must contain at least one line item")
}

func NewInvalidPaymentMethodError(methodCode string) *AppError {
	return newKindError(KindInvalidPaymentMethod, methodCode, "unknown payment method")
}

func NewDuplicateLineItemError(itemRef string) *AppError {
	return newKindError(KindDuplicateLineItem, itemRef, "inventory item appears more than once in the order")
}

// NewInventoryConflictError lists every item that could not be sold.
func NewInventoryConflictError(items []string, reason string) *AppError {
	e := newKindError(KindInventoryConflict, strings.Join(items, ","), reason)
	e.Items = append([]string(nil), items...)
	return e
}

func NewDebtNotFoundError(debtID string) *AppError {
	return newKindError(KindDebtNotFound, debtID, "debt not found")
}

func NewDebtAlreadySettledError(debtID, status string) *AppError {
	return newKindError(KindDebtAlreadySettled, debtID, "debt is "+status+" and accepts no further settlements")
}

func NewOrderNotFoundError(orderID string) *AppError {
	return newKindError(KindOrderNotFound, orderID, "order not found")
}

// NewStorageFailureError wraps a persistence failure. The cause is kept for logs.
func NewStorageFailureError(msg string, err error) *AppError {
	e := newKindError(KindStorageFailure, "", msg)
	e.Err = err
	return e
}

func NewTimeoutError(msg string, err error) *AppError {
	e := newKindError(KindTimeout, "", msg)
	e.Err = err
	return e
}
