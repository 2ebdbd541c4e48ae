package errors

import (
	"fmt"
	"net/http"
)

// Error codes for the number tree domain.
const (
	CodeTreeNotFound         = "TREE_NOT_FOUND"
	CodeParentNotFound       = "PARENT_NOT_FOUND"
	CodeOperationNotFound    = "OPERATION_NOT_FOUND"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeDivisionByZero       = "DIVISION_BY_ZERO"
	CodeInvalidOperationType = "INVALID_OPERATION_TYPE"
	CodeDuplicateUser        = "DUPLICATE_USER"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
)

// Sentinels for errors.Is matching. They carry no message or stack and must
// not be returned directly; use the constructors below.
var (
	ErrTreeNotFound         = &AppError{Type: ErrorTypeNotFound, Code: CodeTreeNotFound}
	ErrParentNotFound       = &AppError{Type: ErrorTypeNotFound, Code: CodeParentNotFound}
	ErrOperationNotFound    = &AppError{Type: ErrorTypeNotFound, Code: CodeOperationNotFound}
	ErrUserNotFound         = &AppError{Type: ErrorTypeNotFound, Code: CodeUserNotFound}
	ErrDivisionByZero       = &AppError{Type: ErrorTypeValidation, Code: CodeDivisionByZero}
	ErrInvalidOperationType = &AppError{Type: ErrorTypeValidation, Code: CodeInvalidOperationType}
	ErrDuplicateUser        = &AppError{Type: ErrorTypeConflict, Code: CodeDuplicateUser}
	ErrInvalidCredentials   = &AppError{Type: ErrorTypeUnauthorized, Code: CodeInvalidCredentials}
)

// TreeNotFound reports a missing tree.
func TreeNotFound(treeID int64) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeTreeNotFound,
		Message:    "Tree not found",
		Details:    map[string]interface{}{"tree_id": treeID},
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// ParentNotFound reports a parent operation that does not resolve within the tree.
func ParentNotFound(operationID int64) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeParentNotFound,
		Message:    "Parent operation not found",
		Details:    map[string]interface{}{"parent_operation_id": operationID},
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// OperationNotFound reports a missing operation record.
func OperationNotFound(operationID int64) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeOperationNotFound,
		Message:    "Operation not found",
		Details:    map[string]interface{}{"operation_id": operationID},
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// UserNotFound reports a missing user.
func UserNotFound() *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeUserNotFound,
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// DivisionByZero reports a DIVIDE with a zero right operand.
func DivisionByZero() *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       CodeDivisionByZero,
		Message:    "Division by zero",
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// InvalidOperationType reports a type outside ADD, SUBTRACT, MULTIPLY and DIVIDE.
func InvalidOperationType(opType string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       CodeInvalidOperationType,
		Message:    "Invalid operation type",
		Details:    map[string]interface{}{"type": opType},
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// DuplicateUser reports a username or email that is already taken.
func DuplicateUser(field string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       CodeDuplicateUser,
		Message:    fmt.Sprintf("a user with this %s already exists", field),
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// InvalidCredentials is returned by login for an unknown email or a wrong password.
func InvalidCredentials() *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       CodeInvalidCredentials,
		Message:    "Incorrect email or password",
		HTTPStatus: http.StatusUnauthorized,
		StackTrace: captureStackTrace(),
	}
}
