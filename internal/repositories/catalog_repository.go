package repositories

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
)

// AchievementRepository owns the achievement catalog. Entries are immutable
// after creation except for the global earned counter.
type AchievementRepository interface {
	Create(ctx context.Context, achievement *models.Achievement) error
	GetByID(ctx context.Context, id uint) (*models.Achievement, error)

	// ListActive returns active achievements in insertion order; eligibility
	// evaluation follows that order.
	ListActive(ctx context.Context) ([]*models.Achievement, error)
	ListByCategory(ctx context.Context, category models.AchievementCategory, includeSecret bool) ([]*models.Achievement, error)

	IncrementTotalEarned(ctx context.Context, id uint) error
}

// RewardRepository owns the reward catalog.
type RewardRepository interface {
	Create(ctx context.Context, reward *models.Reward) error
	GetByID(ctx context.Context, id uint) (*models.Reward, error)
	ListActive(ctx context.Context) ([]*models.Reward, error)
	ListByType(ctx context.Context, rewardType models.RewardType, limit int) ([]*models.Reward, error)
	IncrementTotalEarned(ctx context.Context, id uint) error
}
