package usererrors

import (
	"net/http"

	"go-leaveflow/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"User with the same email already exists",
		http.StatusConflict,
	)

	ErrEmployeeNumberTaken = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists",
		http.StatusConflict,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid role",
		http.StatusBadRequest,
	)

	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave type",
		http.StatusBadRequest,
	)

	ErrUnpaidBalance = apperror.New(
		apperror.CodeInvalidInput,
		"Unpaid leave has no balance to set",
		http.StatusBadRequest,
	)

	ErrNegativeBalance = apperror.New(
		apperror.CodeInvalidInput,
		"Balance cannot be negative",
		http.StatusBadRequest,
	)

	ErrManagerNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"Manager does not exist",
		http.StatusBadRequest,
	)

	ErrManagerRole = apperror.New(
		apperror.CodeInvalidInput,
		"Assigned manager must have the MANAGER role",
		http.StatusBadRequest,
	)

	ErrUserInactive = apperror.New(
		apperror.CodeForbidden,
		"User is inactive",
		http.StatusForbidden,
	)
)
