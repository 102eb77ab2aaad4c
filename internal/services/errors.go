package services

import (
	"errors"
	"fmt"

	apperrors "github.com/vocaplay/game-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound        = errors.New("game session not found")
	ErrSessionAccessDenied    = errors.New("access denied to game session")
	ErrSessionNotActive       = errors.New("game session is not active")
	ErrSessionAlreadyComplete = errors.New("game session already completed")
	ErrActiveSessionExists    = errors.New("an active session already exists for this game type")

	// Question/answer specific errors
	ErrInvalidQuestionIndex    = errors.New("question index out of range")
	ErrQuestionAlreadyAnswered = errors.New("question already answered")
	ErrInvalidGameType         = errors.New("invalid game type")
	ErrInsufficientWords       = errors.New("not enough words available for this game")
	ErrHintsNotAvailable       = errors.New("hints are only available in hint sessions")

	// Word specific errors
	ErrWordNotFound      = errors.New("word not found")
	ErrWordDuplicateText = errors.New("word already exists in the catalog")

	// Achievement/reward specific errors
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrRewardNotEligible   = errors.New("user is not eligible for this reward")
	ErrRewardAlreadyEarned = errors.New("reward already earned")

	// Task specific errors
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAccessDenied     = errors.New("access denied to task")
	ErrTaskNotActive        = errors.New("task is not active")
	ErrStudentNotAssigned   = errors.New("student is not assigned to this task")
	ErrTaskAlreadyCompleted = errors.New("task already completed by this student")
	ErrAssignmentOverdue    = errors.New("assignment is overdue and can no longer be submitted")
	ErrTaskDueDatePast      = errors.New("task due date must be in the future")

	// User/Permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrWordNotFound) ||
		errors.Is(err, ErrAchievementNotFound) ||
		errors.Is(err, ErrRewardNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSessionAccessDenied) ||
		errors.Is(err, ErrTaskAccessDenied) ||
		errors.Is(err, ErrInsufficientPermissions) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ves apperrors.ValidationErrors
	if errors.As(err, &ves) {
		return true
	}
	var ve *apperrors.ValidationError
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionAlreadyComplete) ||
		errors.Is(err, ErrActiveSessionExists) ||
		errors.Is(err, ErrQuestionAlreadyAnswered) ||
		errors.Is(err, ErrRewardAlreadyEarned) ||
		errors.Is(err, ErrTaskAlreadyCompleted) ||
		errors.Is(err, ErrAssignmentOverdue) ||
		errors.Is(err, ErrWordDuplicateText)
}
