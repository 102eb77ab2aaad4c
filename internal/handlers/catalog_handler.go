package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/services"
	"github.com/vocaplay/game-service/internal/utils"
)

type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
	validator      *utils.Validator
}

func NewCatalogHandler(
	catalogService services.CatalogService,
	validator *utils.Validator,
	logger utils.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
		validator:      validator,
	}
}

// CreateAchievement adds an achievement to the catalog
// @Summary Create achievement
// @Tags catalog
// @Accept json
// @Produce json
// @Param achievement body services.CreateAchievementRequest true "Achievement definition"
// @Success 201 {object} models.Achievement
// @Failure 400 {object} ErrorResponse
// @Router /achievements [post]
func (h *CatalogHandler) CreateAchievement(c *gin.Context) {
	var req services.CreateAchievementRequest
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

	h.LogRequest(c, "Creating achievement", "name", req.Name, "category", req.Category)

	achievement, err := h.catalogService.CreateAchievement(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, achievement)
}

// ListAchievements lists the active achievement catalog. Secret achievements
// are only included for teachers and admins.
// @Summary List achievements
// @Tags catalog
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /achievements [get]
func (h *CatalogHandler) ListAchievements(c *gin.Context) {
	includeSecret := false
	if role, exists := c.Get("user_role"); exists {
		r := role.(models.UserRole)
		includeSecret = r == models.RoleTeacher || r == models.RoleAdmin
	}

	achievements, err := h.catalogService.ListAchievements(c.Request.Context(), includeSecret)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Achievements retrieved",
		Data:    achievements,
	})
}

// CreateReward adds a reward to the catalog
// @Summary Create reward
// @Tags catalog
// @Accept json
// @Produce json
// @Param reward body services.CreateRewardRequest true "Reward definition"
// @Success 201 {object} models.Reward
// @Failure 400 {object} ErrorResponse
// @Router /rewards [post]
func (h *CatalogHandler) CreateReward(c *gin.Context) {
	var req services.CreateRewardRequest
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

	h.LogRequest(c, "Creating reward", "name", req.Name, "type", req.Type)

	reward, err := h.catalogService.CreateReward(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reward)
}

// ListRewards lists the active reward catalog
// @Summary List rewards
// @Tags catalog
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /rewards [get]
func (h *CatalogHandler) ListRewards(c *gin.Context) {
	rewards, err := h.catalogService.ListRewards(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Rewards retrieved",
		Data:    rewards,
	})
}

// GetAvailableRewards lists rewards whose gates the caller currently clears
// @Summary Available rewards
// @Tags catalog
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /rewards/available [get]
func (h *CatalogHandler) GetAvailableRewards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rewards, err := h.catalogService.AvailableRewards(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Available rewards retrieved",
		Data:    rewards,
	})
}
