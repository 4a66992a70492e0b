package ticketerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrInvalidCategory = apperror.New(
		apperror.CodeValidation,
		"category is required",
		http.StatusBadRequest,
	).WithField("category")
	ErrInvalidPriority = apperror.New(
		apperror.CodeValidation,
		"priority must be one of LOW, MEDIUM, HIGH, URGENT",
		http.StatusBadRequest,
	).WithField("priority")
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrTicketNotFound = apperror.New(
		apperror.CodeNotFound,
		"ticket not found",
		http.StatusNotFound,
	)
)
