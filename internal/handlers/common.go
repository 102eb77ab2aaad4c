package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/services"
	"github.com/vocaplay/game-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginatedResponse wraps list endpoints with a total count
type PaginatedResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.Warn(message, fields...)
}

func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get("user_id"); exists {
		return userID
	}
	return nil
}

// ===== SERVICE ERROR MAPPING =====

// handleServiceError maps service-layer errors to HTTP responses. All handlers
// funnel through here so the same failure always produces the same status.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationError,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	// Session errors
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Game session not found",
		})
	case errors.Is(err, services.ErrSessionAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied to game session",
		})
	case errors.Is(err, services.ErrSessionNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Game session is no longer active",
		})
	case errors.Is(err, services.ErrSessionAlreadyComplete):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Game session is already completed",
		})
	case errors.Is(err, services.ErrActiveSessionExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "An active game session already exists - complete or abandon it first",
		})

	// Question errors
	case errors.Is(err, services.ErrInvalidQuestionIndex):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Question index is out of range",
		})
	case errors.Is(err, services.ErrQuestionAlreadyAnswered):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Question has already been answered",
		})
	case errors.Is(err, services.ErrInvalidGameType):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid game type",
		})
	case errors.Is(err, services.ErrInsufficientWords):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Not enough words match the requested filters",
		})
	case errors.Is(err, services.ErrHintsNotAvailable):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Hints are only available in the hints game",
		})

	// Word errors
	case errors.Is(err, services.ErrWordNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Word not found",
		})
	case errors.Is(err, services.ErrWordDuplicateText):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "A word with this text already exists",
		})

	// Catalog errors
	case errors.Is(err, services.ErrAchievementNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Achievement not found",
		})
	case errors.Is(err, services.ErrRewardNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Reward not found",
		})
	case errors.Is(err, services.ErrRewardNotEligible):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "User is not eligible for this reward",
		})
	case errors.Is(err, services.ErrRewardAlreadyEarned):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Reward has already been earned",
		})

	// Task errors
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Task not found",
		})
	case errors.Is(err, services.ErrTaskAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied to task",
		})
	case errors.Is(err, services.ErrTaskNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Task is no longer active",
		})
	case errors.Is(err, services.ErrStudentNotAssigned):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student is not assigned to this task",
		})
	case errors.Is(err, services.ErrTaskAlreadyCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Task has already been completed by this student",
		})
	case errors.Is(err, services.ErrAssignmentOverdue):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Assignment is overdue and can no longer be submitted",
		})
	case errors.Is(err, services.ErrTaskDueDatePast):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Due date must be in the future",
		})

	// Generic errors
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized access",
		})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInsufficientPermissions):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden - insufficient permissions",
		})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Bad request",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Resource conflict",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
