package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/vocaplay/game-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates per-entity repositories. WithTransaction runs fn with
// a Repository bound to one transaction; returning an error rolls everything
// back.
type Repository interface {
	Words() WordRepository
	Sessions() SessionRepository
	Users() UserRepository
	Achievements() AchievementRepository
	Rewards() RewardRepository
	Tasks() TaskRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
}

// IsNotFoundError reports whether err is the store's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type WordFilters struct {
	Difficulty *models.DifficultyLevel
	Domain     *models.Domain
	Period     *models.Period
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

type SessionFilters struct {
	UserID   *uint
	GameType *models.GameType
	Status   *models.SessionStatus
	Limit    int
	Offset   int
}

type TaskFilters struct {
	TeacherID  *uint
	StudentID  *uint
	ActiveOnly bool
	DueBefore  *time.Time
	Limit      int
	Offset     int
}

// ===== SHARED RESULT STRUCTS =====

// LeaderboardEntry is one aggregated row over completed sessions.
type LeaderboardEntry struct {
	UserID     uint    `json:"user_id"`
	Username   string  `json:"username"`
	Level      int     `json:"level"`
	TotalScore int     `json:"total_score"`
	TotalGames int     `json:"total_games"`
	AvgScore   float64 `json:"avg_score"`
	BestScore  int     `json:"best_score"`
}

// GameTypeStat is a per-game-type aggregate for one player.
type GameTypeStat struct {
	GameType models.GameType `json:"game_type"`
	Count    int             `json:"count"`
	AvgScore float64         `json:"avg_score"`
}
