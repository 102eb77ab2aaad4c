package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/services"
	"github.com/vocaplay/game-service/internal/utils"
)

type GameHandler struct {
	BaseHandler
	gameService services.GameService
	validator   *utils.Validator
}

func NewGameHandler(
	gameService services.GameService,
	validator *utils.Validator,
	logger utils.Logger,
) *GameHandler {
	return &GameHandler{
		BaseHandler: NewBaseHandler(logger),
		gameService: gameService,
		validator:   validator,
	}
}

// StartSession starts a new game session
// @Summary Start game session
// @Description Starts a new game session of the requested type for the caller
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session parameters"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions [post]
func (h *GameHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting game session", "game_type", req.GameType, "word_count", req.WordCount)

	session, err := h.gameService.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession retrieves a game session by ID
// @Summary Get game session
// @Description Retrieves one of the caller's game sessions by ID
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *GameHandler) GetSession(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := h.gameService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetActiveSession retrieves the caller's active session, if any
// @Summary Get active session
// @Tags sessions
// @Produce json
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/active [get]
func (h *GameHandler) GetActiveSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := h.gameService.GetActive(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitAnswer submits an answer for one question of an active session
// @Summary Submit answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param answer body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} services.AnswerResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answer [post]
func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.gameService.SubmitAnswer(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UseHint reveals the next unseen hint for a question in a hints session
// @Summary Use hint
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param hint body services.UseHintRequest true "Question reference"
// @Success 200 {object} services.HintResult
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/hint [post]
func (h *GameHandler) UseHint(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UseHintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.gameService.UseHint(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteSession finishes a session, scores it and applies progression
// @Summary Complete session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.CompletionResult
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/complete [post]
func (h *GameHandler) CompleteSession(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Completing game session", "session_id", id)

	result, err := h.gameService.Complete(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AbandonSession abandons a session without awarding points
// @Summary Abandon session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/abandon [post]
func (h *GameHandler) AbandonSession(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Abandoning game session", "session_id", id)

	session, err := h.gameService.Abandon(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetHistory lists the caller's past sessions
// @Summary Session history
// @Tags sessions
// @Produce json
// @Param game_type query string false "Filter by game type"
// @Param status query string false "Filter by status"
// @Success 200 {object} PaginatedResponse
// @Router /sessions [get]
func (h *GameHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.SessionFilters{
		Limit:  limit,
		Offset: offset,
	}
	if gt := c.Query("game_type"); gt != "" {
		gameType := models.GameType(gt)
		filters.GameType = &gameType
	}
	if st := c.Query("status"); st != "" {
		status := models.SessionStatus(st)
		filters.Status = &status
	}

	sessions, total, err := h.gameService.History(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:   sessions,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetStats returns the caller's aggregated play statistics
// @Summary Player statistics
// @Tags sessions
// @Produce json
// @Success 200 {object} services.PlayerStats
// @Router /stats [get]
func (h *GameHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.gameService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLeaderboard returns the top players, optionally scoped to one game type
// @Summary Leaderboard
// @Tags sessions
// @Produce json
// @Param game_type query string false "Scope to a single game type"
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Success 200 {object} SuccessResponse
// @Router /leaderboard [get]
func (h *GameHandler) GetLeaderboard(c *gin.Context) {
	var gameType *models.GameType
	if gt := c.Query("game_type"); gt != "" {
		value := models.GameType(gt)
		gameType = &value
	}
	limit, _ := parsePagination(c)

	entries, err := h.gameService.Leaderboard(c.Request.Context(), gameType, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Leaderboard retrieved",
		Data:    entries,
	})
}
