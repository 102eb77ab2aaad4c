package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/utils"
	"gorm.io/datatypes"
)

// catalogService owns the achievement and reward catalogs. Entries are
// created by admins and read by the eligibility evaluation; they are never
// ambient lookups.
type catalogService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewCatalogService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) CatalogService {
	return &catalogService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *catalogService) CreateAchievement(ctx context.Context, req *CreateAchievementRequest, creatorID uint) (*models.Achievement, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	rarity := req.Rarity
	if rarity == "" {
		rarity = models.RarityCommon
	}

	achievement := &models.Achievement{
		Name:         req.Name,
		Description:  req.Description,
		Icon:         req.Icon,
		Category:     req.Category,
		Criteria:     datatypes.NewJSONType(req.Criteria),
		Rarity:       rarity,
		PointsReward: req.PointsReward,
		IsActive:     true,
		IsSecret:     req.IsSecret,
		CreatedBy:    creatorID,
	}
	if err := s.repo.Achievements().Create(ctx, achievement); err != nil {
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}

	s.logger.Info("Achievement created",
		"achievement_id", achievement.ID,
		"name", achievement.Name,
		"criteria_type", req.Criteria.Type)

	return achievement, nil
}

func (s *catalogService) ListAchievements(ctx context.Context, includeSecret bool) ([]*models.Achievement, error) {
	achievements, err := s.repo.Achievements().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	if includeSecret {
		return achievements, nil
	}
	return lo.Filter(achievements, func(a *models.Achievement, _ int) bool {
		return !a.IsSecret
	}), nil
}

func (s *catalogService) CreateReward(ctx context.Context, req *CreateRewardRequest, creatorID uint) (*models.Reward, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	rarity := req.Rarity
	if rarity == "" {
		rarity = models.RarityCommon
	}
	levelRequired := req.LevelRequired
	if levelRequired == 0 {
		levelRequired = 1
	}

	reward := &models.Reward{
		Name:              req.Name,
		Description:       req.Description,
		Type:              req.Type,
		Icon:              req.Icon,
		PointsRequired:    req.PointsRequired,
		LevelRequired:     levelRequired,
		Rarity:            rarity,
		IsActive:          true,
		Repeatable:        req.Repeatable,
		SpecialConditions: req.SpecialConditions,
		Effect:            req.Effect,
		Value:             req.Value,
		CreatedBy:         creatorID,
	}
	if err := s.repo.Rewards().Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}

	s.logger.Info("Reward created",
		"reward_id", reward.ID,
		"name", reward.Name,
		"effect", reward.Effect,
		"repeatable", reward.Repeatable)

	return reward, nil
}

func (s *catalogService) ListRewards(ctx context.Context) ([]*models.Reward, error) {
	rewards, err := s.repo.Rewards().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

func (s *catalogService) AvailableRewards(ctx context.Context, userID uint) ([]*models.Reward, error) {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	rewards, err := s.repo.Rewards().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	return lo.Filter(rewards, func(r *models.Reward, _ int) bool {
		if !r.Repeatable && user.HasReward(r.ID) {
			return false
		}
		return CanUserEarn(r, user, nil)
	}), nil
}
