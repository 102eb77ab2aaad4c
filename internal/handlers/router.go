package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/services"
	"github.com/vocaplay/game-service/internal/utils"
)

type HandlerManager struct {
	gameHandler    *GameHandler
	catalogHandler *CatalogHandler
	taskHandler    *TaskHandler
	wordHandler    *WordHandler
}

func NewHandlerManager(
	gameService services.GameService,
	catalogService services.CatalogService,
	taskService services.TaskService,
	wordService services.WordService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		gameHandler:    NewGameHandler(gameService, validator, logger),
		catalogHandler: NewCatalogHandler(catalogService, validator, logger),
		taskHandler:    NewTaskHandler(taskService, validator, logger),
		wordHandler:    NewWordHandler(wordService, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "game-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		// Game session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.gameHandler.StartSession)
			sessions.GET("", hm.gameHandler.GetHistory)
			sessions.GET("/active", hm.gameHandler.GetActiveSession)
			sessions.GET("/:id", hm.gameHandler.GetSession)
			sessions.POST("/:id/answer", hm.gameHandler.SubmitAnswer)
			sessions.POST("/:id/hint", hm.gameHandler.UseHint)
			sessions.POST("/:id/complete", hm.gameHandler.CompleteSession)
			sessions.POST("/:id/abandon", hm.gameHandler.AbandonSession)
		}

		// Player aggregates
		v1.GET("/stats", hm.gameHandler.GetStats)
		v1.GET("/leaderboard", hm.gameHandler.GetLeaderboard)

		// Achievement and reward catalog
		achievements := v1.Group("/achievements")
		{
			achievements.GET("", hm.catalogHandler.ListAchievements)
			achievements.POST("", RequireRole(models.RoleAdmin), hm.catalogHandler.CreateAchievement)
		}
		rewards := v1.Group("/rewards")
		{
			rewards.GET("", hm.catalogHandler.ListRewards)
			rewards.GET("/available", hm.catalogHandler.GetAvailableRewards)
			rewards.POST("", RequireRole(models.RoleAdmin), hm.catalogHandler.CreateReward)
		}

		// Task routes
		tasks := v1.Group("/tasks")
		{
			tasks.POST("", RequireRole(models.RoleTeacher), hm.taskHandler.CreateTask)
			tasks.GET("/created", RequireRole(models.RoleTeacher), hm.taskHandler.ListTeacherTasks)
			tasks.GET("/assigned", hm.taskHandler.ListStudentTasks)
			tasks.GET("/:id", hm.taskHandler.GetTask)
			tasks.POST("/:id/assign", RequireRole(models.RoleTeacher), hm.taskHandler.AssignStudents)
			tasks.PUT("/:id/progress", RequireRole(models.RoleTeacher), hm.taskHandler.UpdateProgress)
			tasks.POST("/:id/submit", hm.taskHandler.SubmitTask)
			tasks.POST("/:id/check-overdue", hm.taskHandler.CheckOverdue)
			tasks.GET("/:id/stats", RequireRole(models.RoleTeacher), hm.taskHandler.GetStatistics)
		}

		// Word catalog routes
		words := v1.Group("/words")
		{
			words.GET("", hm.wordHandler.ListWords)
			words.GET("/export", RequireRole(models.RoleTeacher), hm.wordHandler.ExportWords)
			words.GET("/:id", hm.wordHandler.GetWord)
			words.POST("", RequireRole(models.RoleTeacher), hm.wordHandler.CreateWord)
			words.POST("/import", RequireRole(models.RoleTeacher), hm.wordHandler.ImportWords)
			words.PUT("/:id", RequireRole(models.RoleTeacher), hm.wordHandler.UpdateWord)
			words.DELETE("/:id", RequireRole(models.RoleTeacher), hm.wordHandler.DeactivateWord)
		}
	}
}
