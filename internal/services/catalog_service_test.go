package services

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/utils"
)

func newCatalogService(f *fakeRepository) CatalogService {
	return NewCatalogService(f, discardLogger(), utils.NewValidator())
}

func TestCatalogService_CreateAchievement(t *testing.T) {
	f := newFakeRepository()
	svc := newCatalogService(f)

	achievement, err := svc.CreateAchievement(context.Background(), &CreateAchievementRequest{
		Name:        "Century",
		Description: "Reach one hundred points",
		Category:    models.CategoryMilestone,
		Criteria: models.AchievementCriteria{
			Type:  models.CriteriaPoints,
			Value: 100,
		},
		PointsReward: 25,
	}, 99)
	require.NoError(t, err)

	assert.NotZero(t, achievement.ID)
	assert.True(t, achievement.IsActive)
	assert.Equal(t, models.RarityCommon, achievement.Rarity, "rarity defaults to common")
	assert.Equal(t, uint(99), achievement.CreatedBy)
	assert.Equal(t, models.CriteriaPoints, achievement.Criteria.Data().Type)
}

func TestCatalogService_ListAchievements_SecretFiltering(t *testing.T) {
	f := newFakeRepository()
	svc := newCatalogService(f)
	ctx := context.Background()

	_, err := svc.CreateAchievement(ctx, &CreateAchievementRequest{
		Name:        "Public",
		Description: "visible to everyone",
		Category:    models.CategoryGaming,
		Criteria:    models.AchievementCriteria{Type: models.CriteriaGamesPlayed, Value: 10},
	}, 99)
	require.NoError(t, err)
	_, err = svc.CreateAchievement(ctx, &CreateAchievementRequest{
		Name:        "Hidden",
		Description: "staff only until earned",
		Category:    models.CategorySpecial,
		Criteria:    models.AchievementCriteria{Type: models.CriteriaPerfectScore, Value: 1},
		IsSecret:    true,
	}, 99)
	require.NoError(t, err)

	visible, err := svc.ListAchievements(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Public", visible[0].Name)

	all, err := svc.ListAchievements(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogService_CreateReward(t *testing.T) {
	f := newFakeRepository()
	svc := newCatalogService(f)

	reward, err := svc.CreateReward(context.Background(), &CreateRewardRequest{
		Name:        "Starter boost",
		Description: "Bonus points for new players",
		Type:        models.RewardBonusPoints,
		Effect:      models.EffectPointsBoost,
		Value:       25,
	}, 99)
	require.NoError(t, err)

	assert.NotZero(t, reward.ID)
	assert.True(t, reward.IsActive)
	assert.Equal(t, 1, reward.LevelRequired, "level gate defaults to one")
	assert.Equal(t, models.RarityCommon, reward.Rarity)
}

func TestCatalogService_AvailableRewards(t *testing.T) {
	f := newFakeRepository()
	svc := newCatalogService(f)
	ctx := context.Background()

	reachable, err := svc.CreateReward(ctx, &CreateRewardRequest{
		Name:        "Bronze badge",
		Description: "for getting started",
		Type:        models.RewardBadge,
		Effect:      models.EffectSpecialBadge,
	}, 99)
	require.NoError(t, err)

	_, err = svc.CreateReward(ctx, &CreateRewardRequest{
		Name:           "Gold badge",
		Description:    "for the truly dedicated",
		Type:           models.RewardBadge,
		Effect:         models.EffectSpecialBadge,
		PointsRequired: 1000,
		LevelRequired:  5,
	}, 99)
	require.NoError(t, err)

	repeatable, err := svc.CreateReward(ctx, &CreateRewardRequest{
		Name:        "Hint pack",
		Description: "extra hints, earn it again and again",
		Type:        models.RewardBonusPoints,
		Effect:      models.EffectBonusHints,
		Repeatable:  true,
		Value:       2,
	}, 99)
	require.NoError(t, err)

	f.addUser(&models.User{ID: 1, Username: "player", Email: "p@example.com", Role: models.RoleStudent, IsActive: true, Points: 50, Level: 1})

	names := func(rewards []*models.Reward) []string {
		return lo.Map(rewards, func(r *models.Reward, _ int) string { return r.Name })
	}

	available, err := svc.AvailableRewards(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bronze badge", "Hint pack"}, names(available))

	// Earned one-shot rewards drop out; repeatable ones stay.
	user := f.getUser(1)
	user.Rewards = append(user.Rewards, models.EarnedReward{RewardID: reachable.ID})
	user.Rewards = append(user.Rewards, models.EarnedReward{RewardID: repeatable.ID})

	available, err = svc.AvailableRewards(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Hint pack"}, names(available))

	_, err = svc.AvailableRewards(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
