package expenseerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrInvalidAmount = apperror.New(
		apperror.CodeValidation,
		"amount must be greater than zero",
		http.StatusBadRequest,
	).WithField("amount")
	ErrInvalidCurrency = apperror.New(
		apperror.CodeValidation,
		"currency must be a 3-letter ISO code",
		http.StatusBadRequest,
	).WithField("currency")
	ErrInvalidCategory = apperror.New(
		apperror.CodeValidation,
		"category is required",
		http.StatusBadRequest,
	).WithField("category")
	ErrInvalidExpenseDate = apperror.New(
		apperror.CodeValidation,
		"invalid expense_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	).WithField("expense_date")
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrExpenseNotFound = apperror.New(
		apperror.CodeNotFound,
		"expense claim not found",
		http.StatusNotFound,
	)
)
