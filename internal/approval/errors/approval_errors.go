package approvalerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrUnauthorized = apperror.New(
		apperror.CodeUnauthorized,
		"you are not authorized to perform this action",
		http.StatusForbidden,
	)
	ErrSelfApproval = apperror.New(
		apperror.CodeSelfApproval,
		"you cannot approve or reject your own request",
		http.StatusForbidden,
	)
	ErrNotRequester = apperror.New(
		apperror.CodeForbidden,
		"only the requester can cancel this request",
		http.StatusForbidden,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"request not found",
		http.StatusNotFound,
	)
	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"request is not in a state that allows this action",
		http.StatusConflict,
	)
	ErrUnknownKind = apperror.New(
		apperror.CodeValidation,
		"request type must be leave, expense or ticket",
		http.StatusBadRequest,
	).WithField("type")
	ErrActionNotSupported = apperror.New(
		apperror.CodeInvalidInput,
		"this action is not available for the request type",
		http.StatusBadRequest,
	)
	ErrBulkEmpty = apperror.New(
		apperror.CodeValidation,
		"at least one item is required",
		http.StatusBadRequest,
	).WithField("items")
	ErrBulkTooLarge = apperror.New(
		apperror.CodeValidation,
		"too many items in one batch",
		http.StatusBadRequest,
	).WithField("items")
)
