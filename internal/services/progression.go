package services

import "github.com/vocaplay/game-service/internal/models"

// pointsPerLevel is the level step: level = floor(points/100)+1.
const pointsPerLevel = 100

// AddPoints is the sole point-mutation entry point; session payouts,
// achievement rewards, reward boosts and task rewards all route through it.
// The level is recomputed from the new total but never decreases. Returns
// whether the user leveled up.
func AddPoints(user *models.User, delta int) bool {
	user.Points += delta
	newLevel := user.Points/pointsPerLevel + 1
	if newLevel > user.Level {
		user.Level = newLevel
		return true
	}
	return false
}

// RecordSessionOutcome applies one completed session to the player's lifetime
// counters: games played always, and exactly one of the answer aggregates.
func RecordSessionOutcome(user *models.User, correct bool) {
	user.TotalGamesPlayed++
	if correct {
		user.CorrectAnswers++
	} else {
		user.WrongAnswers++
	}
}
