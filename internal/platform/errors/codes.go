// Package errors provides structured error handling with HTTP status mapping.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authentication and authorization errors
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeCredentialsInvalid Code = "CREDENTIALS_INVALID"
	CodeForbidden          Code = "FORBIDDEN"

	// User errors
	CodeUserEmailRequired    Code = "USER_EMAIL_REQUIRED"
	CodeUserEmailInvalid     Code = "USER_EMAIL_INVALID"
	CodeUserEmailTaken       Code = "USER_EMAIL_TAKEN"
	CodeUserUsernameInvalid  Code = "USER_USERNAME_INVALID"
	CodeUserUsernameTaken    Code = "USER_USERNAME_TAKEN"
	CodeUserPasswordRequired Code = "USER_PASSWORD_REQUIRED"
	CodeUserPasswordReused   Code = "USER_PASSWORD_REUSED"
	CodeUserOwnsTasks        Code = "USER_OWNS_TASKS"

	// Task errors
	CodeTaskTitleInvalid       Code = "TASK_TITLE_INVALID"
	CodeTaskTitleTaken         Code = "TASK_TITLE_TAKEN"
	CodeTaskDescriptionTooLong Code = "TASK_DESCRIPTION_TOO_LONG"
	CodeTaskStartDateRequired  Code = "TASK_START_DATE_REQUIRED"
	CodeTaskStatusInvalid      Code = "TASK_STATUS_INVALID"
	CodeTaskPriorityInvalid    Code = "TASK_PRIORITY_INVALID"
	CodeTaskTagsMissing        Code = "TASK_TAGS_MISSING"

	// Tag errors
	CodeTagNameInvalid Code = "TAG_NAME_INVALID"
	CodeTagNameTaken   Code = "TAG_NAME_TAKEN"
	CodeTagInUse       Code = "TAG_IN_USE"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, duplicate unique keys, bad input
	case CodeUserEmailRequired,
		CodeUserEmailInvalid,
		CodeUserEmailTaken,
		CodeUserUsernameInvalid,
		CodeUserUsernameTaken,
		CodeUserPasswordRequired,
		CodeUserPasswordReused,
		CodeTaskTitleInvalid,
		CodeTaskTitleTaken,
		CodeTaskDescriptionTooLong,
		CodeTaskStartDateRequired,
		CodeTaskStatusInvalid,
		CodeTaskPriorityInvalid,
		CodeTaskTagsMissing,
		CodeTagNameInvalid,
		CodeTagNameTaken:
		return http.StatusBadRequest

	// Unauthorized - missing, invalid, or expired credential
	case CodeUnauthenticated,
		CodeCredentialsInvalid:
		return http.StatusUnauthorized

	// Forbidden - self-access violation on user resources
	case CodeForbidden:
		return http.StatusForbidden

	// NotFound - resource absent or not owned by the caller
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - delete blocked by existing references
	case CodeTagInUse,
		CodeUserOwnsTasks:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
