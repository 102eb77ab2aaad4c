package repositories

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
)

// SessionRepository owns game session persistence.
type SessionRepository interface {
	Create(ctx context.Context, session *models.GameSession) error
	GetByID(ctx context.Context, id uint) (*models.GameSession, error)
	Update(ctx context.Context, session *models.GameSession) error

	// GetActiveByUser returns the user's single active session, or
	// record-not-found.
	GetActiveByUser(ctx context.Context, userID uint) (*models.GameSession, error)

	List(ctx context.Context, filters SessionFilters) ([]*models.GameSession, int64, error)

	// Leaderboard aggregates completed sessions per user, ordered by total
	// score descending. gameType nil means all game types.
	Leaderboard(ctx context.Context, gameType *models.GameType, limit int) ([]LeaderboardEntry, error)

	// StatsByUser returns per-game-type completed-session aggregates.
	StatsByUser(ctx context.Context, userID uint) ([]GameTypeStat, error)
	CountCompletedByUser(ctx context.Context, userID uint) (int64, error)
}
