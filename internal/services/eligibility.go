package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
)

// defaultPointsBoost is applied when a points_boost reward carries no value.
const defaultPointsBoost = 50

// ===== ACHIEVEMENTS =====

// CheckAchievementEligibility is the pure predicate behind achievement
// evaluation. Session-scoped criteria (perfect_score, speed) are false when no
// session is supplied.
func CheckAchievementEligibility(a *models.Achievement, user *models.User, session *models.GameSession) bool {
	criteria := a.Criteria.Data()
	switch criteria.Type {
	case models.CriteriaPoints:
		return user.Points >= criteria.Value
	case models.CriteriaGamesPlayed:
		return user.TotalGamesPlayed >= criteria.Value
	case models.CriteriaCorrectAnswers:
		return user.CorrectAnswers >= criteria.Value
	case models.CriteriaLevel:
		return user.Level >= criteria.Value
	case models.CriteriaStreak:
		// Simplified: true streak tracking is out of scope.
		return criteria.Consecutive && user.CorrectAnswers >= criteria.Value
	case models.CriteriaDomainMastery:
		if user.CorrectAnswers < criteria.Value {
			return false
		}
		if criteria.Domain != "" && session != nil {
			return session.HasWordFrom(criteria.Domain)
		}
		return true
	case models.CriteriaPerfectScore:
		return session != nil && session.PerfectScore()
	case models.CriteriaSpeed:
		return session != nil && criteria.TimeLimit > 0 && session.TimeSpent <= criteria.TimeLimit
	case models.CriteriaCustom:
		return false
	default:
		return false
	}
}

// AwardAchievement grants the achievement to the user, idempotently per user.
// The second grant of the same achievement reports alreadyEarned and leaves
// the user untouched. Points flow through AddPoints.
func AwardAchievement(user *models.User, a *models.Achievement, now time.Time) (alreadyEarned bool) {
	if user.HasAchievement(a.ID) {
		return true
	}
	user.Achievements = append(user.Achievements, models.EarnedAchievement{
		AchievementID: a.ID,
		EarnedAt:      now,
	})
	if a.PointsReward > 0 {
		AddPoints(user, a.PointsReward)
	}
	return false
}

// EvaluateAchievements walks the active catalog in insertion order and awards
// every newly eligible achievement. The caller passes the repository bound to
// its transaction so catalog counters commit with the user update.
func EvaluateAchievements(ctx context.Context, repo repositories.Repository, logger *slog.Logger, user *models.User, session *models.GameSession) ([]EarnedAchievementResult, error) {
	catalog, err := repo.Achievements().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	now := time.Now()
	var earned []EarnedAchievementResult
	for _, a := range catalog {
		if user.HasAchievement(a.ID) {
			continue
		}
		if !CheckAchievementEligibility(a, user, session) {
			continue
		}
		AwardAchievement(user, a, now)
		if err := repo.Achievements().IncrementTotalEarned(ctx, a.ID); err != nil {
			return nil, fmt.Errorf("failed to bump achievement counter: %w", err)
		}
		earned = append(earned, EarnedAchievementResult{Achievement: a, PointsReward: a.PointsReward})

		logger.Info("Achievement earned",
			"user_id", user.ID,
			"achievement_id", a.ID,
			"achievement", a.Name,
			"points_reward", a.PointsReward)
	}
	return earned, nil
}

// ===== REWARDS =====

// CanUserEarn checks the points and level gates, then the reward's special
// conditions against the session. Session-dependent conditions pass through
// unchecked when no session is supplied.
func CanUserEarn(r *models.Reward, user *models.User, session *models.GameSession) bool {
	if user.Points < r.PointsRequired || user.Level < r.LevelRequired {
		return false
	}
	cond := r.SpecialConditions
	if cond == nil || session == nil {
		return true
	}
	if cond.GameType != "" && cond.GameType != "any" && session.GameType != cond.GameType {
		return false
	}
	if cond.MinScore > 0 && session.Score < cond.MinScore {
		return false
	}
	if cond.PerfectScore && !session.PerfectScore() {
		return false
	}
	if cond.Domain != "" && !session.HasWordFrom(cond.Domain) {
		return false
	}
	if cond.Period != "" && !session.HasWordOfPeriod(cond.Period) {
		return false
	}
	return true
}

// ApplyRewardEffect mutates the user according to the reward's effect.
func ApplyRewardEffect(r *models.Reward, user *models.User) {
	switch r.Effect {
	case models.EffectPointsBoost:
		boost := r.Value
		if boost == 0 {
			boost = defaultPointsBoost
		}
		AddPoints(user, boost)
	case models.EffectSpecialBadge:
		if !user.HasBadge(r.ID) {
			user.Badges = append(user.Badges, r.ID)
		}
	case models.EffectTitleChange:
		title := r.Name
		user.Title = &title
	case models.EffectBonusHints:
		hints := r.Value
		if hints == 0 {
			hints = 1
		}
		user.BonusHints += hints
	case models.EffectUnlockContent:
		// Content unlocking lives in the client; nothing to mutate here.
	}
}

// EvaluateRewards grants every active reward the user qualifies for.
// Non-repeatable rewards are award-once, tracked on the user like
// achievements; repeatable ones re-apply their effect on every qualifying
// session.
func EvaluateRewards(ctx context.Context, repo repositories.Repository, logger *slog.Logger, user *models.User, session *models.GameSession) ([]EarnedRewardResult, error) {
	catalog, err := repo.Rewards().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	now := time.Now()
	var earned []EarnedRewardResult
	for _, r := range catalog {
		if !r.Repeatable && user.HasReward(r.ID) {
			continue
		}
		if !CanUserEarn(r, user, session) {
			continue
		}

		ApplyRewardEffect(r, user)
		if !user.HasReward(r.ID) {
			user.Rewards = append(user.Rewards, models.EarnedReward{RewardID: r.ID, EarnedAt: now})
		}
		if err := repo.Rewards().IncrementTotalEarned(ctx, r.ID); err != nil {
			return nil, fmt.Errorf("failed to bump reward counter: %w", err)
		}
		earned = append(earned, EarnedRewardResult{Reward: r, Effect: r.Effect})

		logger.Info("Reward earned",
			"user_id", user.ID,
			"reward_id", r.ID,
			"reward", r.Name,
			"effect", r.Effect)
	}
	return earned, nil
}
