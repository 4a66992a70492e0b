package chainerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrNameRequired = apperror.RequiredField("name")
	ErrChainNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval chain not found",
		http.StatusNotFound,
	)
	ErrInvalidKind = apperror.New(
		apperror.CodeValidation,
		"request_kind must be leave, expense or ticket",
		http.StatusBadRequest,
	).WithField("request_kind")
	ErrStepsRequired = apperror.New(
		apperror.CodeValidation,
		"at least one step is required",
		http.StatusBadRequest,
	).WithField("steps")
	ErrInvalidStepRole = apperror.New(
		apperror.CodeValidation,
		"step role must be manager, hr or admin",
		http.StatusBadRequest,
	).WithField("steps")
	ErrInvalidRequiredApprovals = apperror.New(
		apperror.CodeValidation,
		"required_approvals must be 1",
		http.StatusBadRequest,
	).WithField("steps")
	ErrConditionNotSupported = apperror.New(
		apperror.CodeValidation,
		"min_amount applies to expense chains and min_days to leave chains",
		http.StatusBadRequest,
	)
	ErrInvalidCondition = apperror.New(
		apperror.CodeValidation,
		"condition thresholds must be positive",
		http.StatusBadRequest,
	)
	ErrDefaultHasCondition = apperror.New(
		apperror.CodeValidation,
		"a default chain cannot have a condition",
		http.StatusBadRequest,
	).WithField("is_default")
	ErrConditionRequired = apperror.New(
		apperror.CodeValidation,
		"a non-default chain needs min_amount or min_days",
		http.StatusBadRequest,
	)
)
