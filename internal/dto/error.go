package dto

import "github.com/SscSPs/resale_settlement/internal/apperrors"

// ErrorBody is the machine-readable part of a rejected request.
type ErrorBody struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Subject string   `json:"subject,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// ErrorResponse is the envelope for every error returned by the API.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a response from a kind and message.
func NewErrorResponse(kind apperrors.Kind, message, subject string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Kind: string(kind), Message: message, Subject: subject}}
}

// ToErrorResponse describes an AppError. Storage failures hide their cause.
func ToErrorResponse(err *apperrors.AppError) ErrorResponse {
	msg := err.Message
	if err.Kind == apperrors.KindStorageFailure && msg == "" {
		msg = "storage failure"
	}
	return ErrorResponse{Error: ErrorBody{
		Kind:    string(err.Kind),
		Message: msg,
		Subject: err.Subject,
		Items:   err.Items,
	}}
}
