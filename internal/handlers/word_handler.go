package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/services"
	"github.com/vocaplay/game-service/internal/utils"
)

const maxImportFileSize = 10 << 20 // 10 MB

type WordHandler struct {
	BaseHandler
	wordService services.WordService
	validator   *utils.Validator
}

func NewWordHandler(
	wordService services.WordService,
	validator *utils.Validator,
	logger utils.Logger,
) *WordHandler {
	return &WordHandler{
		BaseHandler: NewBaseHandler(logger),
		wordService: wordService,
		validator:   validator,
	}
}

// CreateWord adds a word to the catalog
// @Summary Create word
// @Tags words
// @Accept json
// @Produce json
// @Param word body services.CreateWordRequest true "Word data"
// @Success 201 {object} models.Word
// @Failure 400 {object} ErrorResponse
// @Router /words [post]
func (h *WordHandler) CreateWord(c *gin.Context) {
	var req services.CreateWordRequest
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

	word, err := h.wordService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, word)
}

// GetWord retrieves a word by ID
// @Summary Get word
// @Tags words
// @Produce json
// @Param id path uint true "Word ID"
// @Success 200 {object} models.Word
// @Failure 404 {object} ErrorResponse
// @Router /words/{id} [get]
func (h *WordHandler) GetWord(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	word, err := h.wordService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, word)
}

// UpdateWord applies a partial update to a word
// @Summary Update word
// @Tags words
// @Accept json
// @Produce json
// @Param id path uint true "Word ID"
// @Param word body services.UpdateWordRequest true "Fields to update"
// @Success 200 {object} models.Word
// @Failure 404 {object} ErrorResponse
// @Router /words/{id} [put]
func (h *WordHandler) UpdateWord(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	word, err := h.wordService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, word)
}

// DeactivateWord retires a word from new sessions
// @Summary Deactivate word
// @Tags words
// @Produce json
// @Param id path uint true "Word ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /words/{id} [delete]
func (h *WordHandler) DeactivateWord(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.wordService.Deactivate(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Word deactivated",
	})
}

// ListWords lists the catalog with optional filters
// @Summary List words
// @Tags words
// @Produce json
// @Param difficulty query string false "Filter by difficulty"
// @Param domain query string false "Filter by domain"
// @Param period query string false "Filter by period"
// @Param search query string false "Search in text and meanings"
// @Param active query bool false "Only active words"
// @Success 200 {object} PaginatedResponse
// @Router /words [get]
func (h *WordHandler) ListWords(c *gin.Context) {
	limit, offset := parsePagination(c)
	filters := repositories.WordFilters{
		ActiveOnly: c.Query("active") == "true",
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     offset,
	}
	if d := c.Query("difficulty"); d != "" {
		difficulty := models.DifficultyLevel(d)
		filters.Difficulty = &difficulty
	}
	if d := c.Query("domain"); d != "" {
		domain := models.Domain(d)
		filters.Domain = &domain
	}
	if p := c.Query("period"); p != "" {
		period := models.Period(p)
		filters.Period = &period
	}

	words, total, err := h.wordService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:   words,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// ImportWords bulk-loads words from an uploaded xlsx file
// @Summary Import words
// @Tags words
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx file"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /words/import [post]
func (h *WordHandler) ImportWords(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "File too large",
			Details: fmt.Sprintf("maximum upload size is %d bytes", maxImportFileSize),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing words", "filename", fileHeader.Filename, "size", fileHeader.Size)

	result, err := h.wordService.ImportXLSX(c.Request.Context(), file, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportWords streams the filtered catalog as an xlsx download
// @Summary Export words
// @Tags words
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param domain query string false "Filter by domain"
// @Param period query string false "Filter by period"
// @Success 200 {file} binary
// @Router /words/export [get]
func (h *WordHandler) ExportWords(c *gin.Context) {
	filters := repositories.WordFilters{
		ActiveOnly: c.Query("active") == "true",
	}
	if d := c.Query("domain"); d != "" {
		domain := models.Domain(d)
		filters.Domain = &domain
	}
	if p := c.Query("period"); p != "" {
		period := models.Period(p)
		filters.Period = &period
	}

	filename := fmt.Sprintf("words-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.wordService.ExportXLSX(c.Request.Context(), filters, c.Writer); err != nil {
		h.LogError(c, err, "Word export failed")
		c.Status(http.StatusInternalServerError)
		return
	}
}
