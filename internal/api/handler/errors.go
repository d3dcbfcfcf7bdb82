package handler

import (
	"net/http"

	"github.com/mcoot/mafiagame-go/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeNotAdmin           = apierr.CodeNotAdmin
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeHandleTaken        = apierr.CodeHandleTaken
	CodeIdentityNotFound   = apierr.CodeIdentityNotFound
	CodeRoomNotFound       = apierr.CodeRoomNotFound
	CodeRoomFull           = apierr.CodeRoomFull
	CodeWrongSecret        = apierr.CodeWrongSecret
	CodeAlreadyInRoom      = apierr.CodeAlreadyInRoom
	CodeNotInRoom          = apierr.CodeNotInRoom
	CodeNotOwner           = apierr.CodeNotOwner
	CodeGameInProgress     = apierr.CodeGameInProgress
	CodeNoGame             = apierr.CodeNoGame
	CodeUnknownCosmetic    = apierr.CodeUnknownCosmetic
	CodeAlreadyOwned       = apierr.CodeAlreadyOwned
	CodeInsufficientFunds  = apierr.CodeInsufficientFunds
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
