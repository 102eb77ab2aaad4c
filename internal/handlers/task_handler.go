package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/services"
	"github.com/vocaplay/game-service/internal/utils"
)

type TaskHandler struct {
	BaseHandler
	taskService services.TaskService
	validator   *utils.Validator
}

func NewTaskHandler(
	taskService services.TaskService,
	validator *utils.Validator,
	logger utils.Logger,
) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger),
		taskService: taskService,
		validator:   validator,
	}
}

// AssignStudentsRequest adds students to an existing task
type AssignStudentsRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"required,min=1,dive,min=1"`
}

// CreateTask creates a new task and assigns the listed students
// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body services.CreateTaskRequest true "Task definition"
// @Success 201 {object} models.Task
// @Failure 400 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating task", "title", req.Title, "students", len(req.StudentIDs))

	task, err := h.taskService.Create(c.Request.Context(), &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask retrieves a task visible to the caller
// @Summary Get task
// @Tags tasks
// @Produce json
// @Param id path uint true "Task ID"
// @Success 200 {object} models.Task
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ListTeacherTasks lists tasks created by the caller
// @Summary List created tasks
// @Tags tasks
// @Produce json
// @Param active query bool false "Only active tasks"
// @Success 200 {object} PaginatedResponse
// @Router /tasks/created [get]
func (h *TaskHandler) ListTeacherTasks(c *gin.Context) {
	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.TaskFilters{
		ActiveOnly: c.Query("active") == "true",
		Limit:      limit,
		Offset:     offset,
	}

	tasks, total, err := h.taskService.ListByTeacher(c.Request.Context(), teacherID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:   tasks,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// ListStudentTasks lists tasks assigned to the caller
// @Summary List assigned tasks
// @Tags tasks
// @Produce json
// @Success 200 {object} PaginatedResponse
// @Router /tasks/assigned [get]
func (h *TaskHandler) ListStudentTasks(c *gin.Context) {
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.TaskFilters{
		ActiveOnly: c.Query("active") == "true",
		Limit:      limit,
		Offset:     offset,
	}

	tasks, total, err := h.taskService.ListByStudent(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:   tasks,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// AssignStudents adds students to an existing task
// @Summary Assign students
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path uint true "Task ID"
// @Param students body AssignStudentsRequest true "Student IDs"
// @Success 200 {object} models.Task
// @Failure 403 {object} ErrorResponse
// @Router /tasks/{id}/assign [post]
func (h *TaskHandler) AssignStudents(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req AssignStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Assigning students to task", "task_id", id, "students", len(req.StudentIDs))

	task, err := h.taskService.AssignStudents(c.Request.Context(), id, req.StudentIDs, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateProgress updates one student's assignment from the teacher side.
// Teacher updates never award points, even when marking the work completed.
// @Summary Update assignment progress
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path uint true "Task ID"
// @Param progress body services.UpdateProgressRequest true "Progress update"
// @Success 200 {object} models.Task
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id}/progress [put]
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateProgress(c.Request.Context(), id, &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// SubmitTask records the caller's completion of an assigned task and awards
// the task's points
// @Summary Submit task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path uint true "Task ID"
// @Param submission body services.SubmitTaskRequest true "Submission"
// @Success 200 {object} services.TaskSubmissionResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tasks/{id}/submit [post]
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting task", "task_id", id, "score", req.Score)

	result, err := h.taskService.Submit(c.Request.Context(), id, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckOverdue flips any past-due assignments on the task and returns it
// @Summary Check task overdue state
// @Tags tasks
// @Produce json
// @Param id path uint true "Task ID"
// @Success 200 {object} models.Task
// @Router /tasks/{id}/check-overdue [post]
func (h *TaskHandler) CheckOverdue(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	task, err := h.taskService.CheckOverdue(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// GetStatistics returns completion statistics for the task's owner
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Param id path uint true "Task ID"
// @Success 200 {object} models.TaskStatistics
// @Failure 403 {object} ErrorResponse
// @Router /tasks/{id}/stats [get]
func (h *TaskHandler) GetStatistics(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.taskService.Statistics(c.Request.Context(), id, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
