package postgres

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"gorm.io/gorm"
)

type AchievementPostgreSQL struct {
	db *gorm.DB
}

func NewAchievementPostgreSQL(db *gorm.DB) repositories.AchievementRepository {
	return &AchievementPostgreSQL{db: db}
}

func (r *AchievementPostgreSQL) Create(ctx context.Context, achievement *models.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *AchievementPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := r.db.WithContext(ctx).First(&achievement, id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *AchievementPostgreSQL) ListActive(ctx context.Context) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *AchievementPostgreSQL) ListByCategory(ctx context.Context, category models.AchievementCategory, includeSecret bool) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	query := r.db.WithContext(ctx).Where("category = ? AND is_active = ?", category, true)
	if !includeSecret {
		query = query.Where("is_secret = ?", false)
	}
	if err := query.Order("points_reward ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *AchievementPostgreSQL) IncrementTotalEarned(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Achievement{}).Where("id = ?", id).
		Update("total_earned", gorm.Expr("total_earned + 1")).Error
}

type RewardPostgreSQL struct {
	db *gorm.DB
}

func NewRewardPostgreSQL(db *gorm.DB) repositories.RewardRepository {
	return &RewardPostgreSQL{db: db}
}

func (r *RewardPostgreSQL) Create(ctx context.Context, reward *models.Reward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *RewardPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.WithContext(ctx).First(&reward, id).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *RewardPostgreSQL) ListActive(ctx context.Context) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *RewardPostgreSQL) ListByType(ctx context.Context, rewardType models.RewardType, limit int) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", rewardType, true).
		Order("points_required ASC").
		Limit(limit).
		Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *RewardPostgreSQL) IncrementTotalEarned(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Reward{}).Where("id = ?", id).
		Update("total_earned", gorm.Expr("total_earned + 1")).Error
}
