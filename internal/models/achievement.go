package models

import (
	"time"

	"gorm.io/datatypes"
)

type AchievementCategory string

const (
	CategoryLearning  AchievementCategory = "learning"
	CategoryGaming    AchievementCategory = "gaming"
	CategorySocial    AchievementCategory = "social"
	CategorySpecial   AchievementCategory = "special"
	CategoryMilestone AchievementCategory = "milestone"
)

type CriteriaType string

const (
	CriteriaPoints         CriteriaType = "points"
	CriteriaGamesPlayed    CriteriaType = "games_played"
	CriteriaCorrectAnswers CriteriaType = "correct_answers"
	CriteriaStreak         CriteriaType = "streak"
	CriteriaLevel          CriteriaType = "level"
	CriteriaDomainMastery  CriteriaType = "domain_mastery"
	CriteriaPerfectScore   CriteriaType = "perfect_score"
	CriteriaSpeed          CriteriaType = "speed"
	CriteriaCustom         CriteriaType = "custom"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AchievementCriteria is the jsonb rule block an achievement is checked
// against. Value is the threshold for counter-based types; TimeLimit applies
// to speed, Consecutive to streak.
type AchievementCriteria struct {
	Type        CriteriaType `json:"type" validate:"required"`
	Value       int          `json:"value"`
	GameType    GameType     `json:"game_type,omitempty"`
	Domain      Domain       `json:"domain,omitempty"`
	Period      Period       `json:"period,omitempty"`
	TimeLimit   int          `json:"time_limit,omitempty"` // seconds
	Consecutive bool         `json:"consecutive,omitempty"`
}

// Achievement is an immutable catalog entry; only TotalEarned moves after
// creation.
type Achievement struct {
	ID          uint                                       `json:"id" gorm:"primaryKey"`
	Name        string                                     `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,max=100"`
	Description string                                     `json:"description" gorm:"not null;type:text" validate:"required"`
	Icon        string                                     `json:"icon" gorm:"size:500"`
	Category    AchievementCategory                        `json:"category" gorm:"not null;index" validate:"required,oneof=learning gaming social special milestone"`
	Criteria    datatypes.JSONType[AchievementCriteria]    `json:"criteria"`
	Rarity      Rarity                                     `json:"rarity" gorm:"default:common"`
	PointsReward int                                       `json:"points_reward" gorm:"default:0"`
	IsActive    bool                                       `json:"is_active" gorm:"default:true;index"`
	IsSecret    bool                                       `json:"is_secret" gorm:"default:false"` // hidden until earned
	TotalEarned int                                        `json:"total_earned" gorm:"default:0"`
	CreatedBy   uint                                       `json:"created_by"`
	CreatedAt   time.Time                                  `json:"created_at"`
	UpdatedAt   time.Time                                  `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}
