package leaveerrors

import (
	"net/http"

	"go-leaveflow/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type",
		http.StatusBadRequest,
	)
	ErrHalfDayRange = apperror.New(
		apperror.CodeInvalidInput,
		"half-day requests must start and end on the same date",
		http.StatusBadRequest,
	)
	ErrReasonTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"reason cannot exceed 500 characters",
		http.StatusBadRequest,
	)
	ErrCommentTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"comment cannot exceed 500 characters",
		http.StatusBadRequest,
	)
	ErrAttachmentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"a supporting document is required for this leave type",
		http.StatusBadRequest,
	)
	ErrInvalidOverrideStatus = apperror.New(
		apperror.CodeInvalidInput,
		"override status must be either APPROVED or REJECTED",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrDuplicatePending = apperror.New(
		apperror.CodeConflict,
		"a pending request for these dates already exists",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidState,
		"insufficient leave balance",
		http.StatusBadRequest,
	)
	ErrNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be updated",
		http.StatusBadRequest,
	)
	ErrNotCancellable = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be cancelled",
		http.StatusBadRequest,
	)
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeInvalidState,
		"leave request status changed, refresh and try again",
		http.StatusBadRequest,
	)
	ErrNotOverridable = apperror.New(
		apperror.CodeInvalidState,
		"only approved or rejected leave requests can be overridden",
		http.StatusBadRequest,
	)
	ErrNotTeamMember = apperror.New(
		apperror.CodeForbidden,
		"you can only act on leave requests of your own team members",
		http.StatusForbidden,
	)
)

// InsufficientBalance carries the numbers a caller needs to render an
// actionable message. errors.Is still matches ErrInsufficientBalance.
func InsufficientBalance(leaveType string, available, required float64) *apperror.AppError {
	return ErrInsufficientBalance.WithDetails(map[string]any{
		"leave_type": leaveType,
		"available":  available,
		"required":   required,
	})
}

// AlreadyProcessed reports the status that blocked the transition.
func AlreadyProcessed(status string) *apperror.AppError {
	return ErrAlreadyProcessed.WithDetails(map[string]any{
		"status": status,
	})
}
