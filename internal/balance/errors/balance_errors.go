package balanceerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave policy not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEntitlement = apperror.New(
		apperror.CodeValidation,
		"entitlements must be non-negative",
		http.StatusBadRequest,
	).WithField("entitlements")
	ErrInvalidCarryOverLimit = apperror.New(
		apperror.CodeValidation,
		"carry_over_limit must be non-negative",
		http.StatusBadRequest,
	).WithField("carry_over_limit")
	ErrInvalidCycleStartMonth = apperror.New(
		apperror.CodeValidation,
		"cycle_start_month must be between 1 and 12",
		http.StatusBadRequest,
	).WithField("cycle_start_month")
)
