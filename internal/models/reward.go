package models

import (
	"time"
)

type RewardType string

const (
	RewardBadge         RewardType = "badge"
	RewardTitle         RewardType = "title"
	RewardUnlock        RewardType = "unlock"
	RewardBonusPoints   RewardType = "bonus_points"
	RewardSpecialAccess RewardType = "special_access"
)

type RewardEffect string

const (
	EffectPointsBoost   RewardEffect = "points_boost"
	EffectUnlockContent RewardEffect = "unlock_content"
	EffectSpecialBadge  RewardEffect = "special_badge"
	EffectTitleChange   RewardEffect = "title_change"
	EffectBonusHints    RewardEffect = "bonus_hints"
)

// RewardConditions narrows when a reward can be earned beyond the points and
// level gates. Zero-valued fields are not checked. Domain and Period match
// against the words that appeared in the qualifying session.
type RewardConditions struct {
	GameType     GameType `json:"game_type,omitempty"` // "any" and empty both match all
	MinScore     int      `json:"min_score,omitempty"`
	PerfectScore bool     `json:"perfect_score,omitempty"`
	Domain       Domain   `json:"domain,omitempty"`
	Period       Period   `json:"period,omitempty"`
}

// Reward is a catalog entry whose effect mutates the earning user. Repeatable
// rewards may be granted on every qualifying session; others are award-once.
type Reward struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	Name           string            `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Description    string            `json:"description" gorm:"not null;type:text" validate:"required"`
	Type           RewardType        `json:"type" gorm:"not null;index" validate:"required,oneof=badge title unlock bonus_points special_access"`
	Icon           string            `json:"icon" gorm:"size:500"`
	PointsRequired int               `json:"points_required" gorm:"not null;index:idx_rewards_gates" validate:"min=0"`
	LevelRequired  int               `json:"level_required" gorm:"default:1;index:idx_rewards_gates" validate:"min=1"`
	Rarity         Rarity            `json:"rarity" gorm:"default:common"`
	IsActive       bool              `json:"is_active" gorm:"default:true;index"`
	Repeatable     bool              `json:"repeatable" gorm:"default:false"`
	SpecialConditions *RewardConditions `json:"special_conditions,omitempty" gorm:"serializer:json"`
	Effect         RewardEffect      `json:"effect" gorm:"default:points_boost"`
	Value          int               `json:"value" gorm:"default:0"` // points or hint count, per effect
	TotalEarned    int               `json:"total_earned" gorm:"default:0"`
	CreatedBy      uint              `json:"created_by"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (Reward) TableName() string {
	return "rewards"
}
