package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

type GameType string

const (
	GameMatch   GameType = "match"
	GameMCQ     GameType = "mcq"
	GameHints   GameType = "hints"
	GameJumbled GameType = "jumbled"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// MatchToken is one draggable item in a match-game question.
type MatchToken struct {
	WordID uint   `json:"word_id"`
	Text   string `json:"text"`
}

// Question is embedded in a session's jsonb question list. UserAnswer stays
// nil until the player answers; it is set at most once.
type Question struct {
	WordID        uint     `json:"word_id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options,omitempty"` // mcq only, always 4 entries
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    *string  `json:"user_answer"`
	IsCorrect     bool     `json:"is_correct"`
	TimeSpent     int      `json:"time_spent"` // seconds
	HintsUsed     int      `json:"hints_used"`

	// Snapshot of the source word's tags taken at generation time, so reward
	// conditions on domain/period can be checked without re-reading the
	// catalog.
	WordDomain Domain `json:"word_domain,omitempty"`
	WordPeriod Period `json:"word_period,omitempty"`

	// Match game only: independently shuffled token lists and the ground
	// truth pairing, keyed by decimal word id.
	WordTokens    []MatchToken      `json:"word_tokens,omitempty"`
	MeaningTokens []MatchToken      `json:"meaning_tokens,omitempty"`
	CorrectPairs  map[string]string `json:"correct_pairs,omitempty"`
}

// Answered reports whether the player has already answered this question.
func (q *Question) Answered() bool {
	return q.UserAnswer != nil
}

// HintUse is one entry in a hints-game session's hint log.
type HintUse struct {
	WordID uint      `json:"word_id"`
	Hint   string    `json:"hint"`
	UsedAt time.Time `json:"used_at"`
}

// GameSession owns one play-through of a game. It is created active and moves
// to exactly one terminal state; terminal sessions are never mutated again.
type GameSession struct {
	ID             uint                           `json:"id" gorm:"primaryKey"`
	UserID         uint                           `json:"user_id" gorm:"not null;index:idx_sessions_user_status"`
	GameType       GameType                       `json:"game_type" gorm:"not null;index" validate:"required,game_type"`
	Status         SessionStatus                  `json:"status" gorm:"default:active;index:idx_sessions_user_status"`
	Score          int                            `json:"score" gorm:"default:0;index"`
	TotalQuestions int                            `json:"total_questions" gorm:"not null"`
	CorrectCount   int                            `json:"correct_count" gorm:"default:0"`
	WrongCount     int                            `json:"wrong_count" gorm:"default:0"`
	TimeSpent      int                            `json:"time_spent" gorm:"default:0"` // seconds
	Questions      datatypes.JSONSlice[Question]  `json:"questions"`
	Difficulty     DifficultyLevel                `json:"difficulty" gorm:"default:Medium"`
	PointsEarned   int                            `json:"points_earned" gorm:"default:0"`
	HintLog        datatypes.JSONSlice[HintUse]   `json:"hint_log"`
	StartedAt      time.Time                      `json:"started_at" gorm:"index"`
	CompletedAt    *time.Time                     `json:"completed_at"`
	CreatedAt      time.Time                      `json:"created_at"`
	UpdatedAt      time.Time                      `json:"updated_at"`
}

func (GameSession) TableName() string {
	return "game_sessions"
}

func (s *GameSession) IsActive() bool {
	return s.Status == SessionActive
}

// Accuracy returns the fraction of questions answered correctly, in percent.
func (s *GameSession) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalQuestions) * 100
}

// FinalScore computes the completion score: 10 points per correct answer, a
// decaying speed bonus for finishing under five minutes, and an accuracy
// bonus worth up to 50.
func (s *GameSession) FinalScore() int {
	base := float64(s.CorrectCount) * 10
	timeBonus := math.Max(0, float64(300-s.TimeSpent)) * 0.1
	accuracyBonus := float64(s.CorrectCount) / float64(s.TotalQuestions) * 50
	return int(math.Round(base + timeBonus + accuracyBonus))
}

// PerfectScore reports whether every question was answered correctly, per the
// base-score criterion used by achievements and rewards.
func (s *GameSession) PerfectScore() bool {
	return s.Score == s.TotalQuestions*10
}

// HasWordFrom reports whether any question's source word carries the given
// domain (empty domain matches nothing).
func (s *GameSession) HasWordFrom(domain Domain) bool {
	for _, q := range s.Questions {
		if q.WordDomain == domain {
			return true
		}
	}
	return false
}

// HasWordOfPeriod reports whether any question's source word carries the
// given period.
func (s *GameSession) HasWordOfPeriod(period Period) bool {
	for _, q := range s.Questions {
		if q.WordPeriod == period {
			return true
		}
	}
	return false
}
