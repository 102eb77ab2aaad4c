package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "Student"
	RoleTeacher UserRole = "Teacher"
	RoleAdmin   UserRole = "Admin"
)

// EarnedAchievement records one achievement grant on a user.
type EarnedAchievement struct {
	AchievementID uint      `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// EarnedReward records a reward grant; non-repeatable rewards are checked
// against this list before re-granting.
type EarnedReward struct {
	RewardID uint      `json:"reward_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// User is the shared record for all roles, discriminated by Role. Student
// progression fields stay zero for teachers and admins.
type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Username string   `json:"username" gorm:"not null;index;size:30" validate:"required,min=3,max=30"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Role     UserRole `json:"role" gorm:"not null;index;default:Student" validate:"required,user_role"`
	IsActive bool     `json:"is_active" gorm:"default:true"`

	// Student progression. Points and level only ever grow.
	Points           int `json:"points" gorm:"default:0;index"`
	Level            int `json:"level" gorm:"default:1"`
	TotalGamesPlayed int `json:"total_games_played" gorm:"default:0"`
	CorrectAnswers   int `json:"correct_answers" gorm:"default:0"`
	WrongAnswers     int `json:"wrong_answers" gorm:"default:0"`

	Achievements datatypes.JSONSlice[EarnedAchievement] `json:"achievements"`
	Rewards      datatypes.JSONSlice[EarnedReward]      `json:"rewards"`
	Badges       datatypes.JSONSlice[uint]              `json:"badges"`
	Title        *string                                `json:"title"`
	BonusHints   int                                    `json:"bonus_hints" gorm:"default:0"`

	// Teacher fields.
	Subjects datatypes.JSONSlice[string] `json:"subjects,omitempty"`

	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// HasAchievement reports whether the achievement was already granted.
func (u *User) HasAchievement(achievementID uint) bool {
	for _, a := range u.Achievements {
		if a.AchievementID == achievementID {
			return true
		}
	}
	return false
}

// HasReward reports whether the reward was already granted at least once.
func (u *User) HasReward(rewardID uint) bool {
	for _, r := range u.Rewards {
		if r.RewardID == rewardID {
			return true
		}
	}
	return false
}

// HasBadge reports whether the badge is already on the profile.
func (u *User) HasBadge(rewardID uint) bool {
	for _, b := range u.Badges {
		if b == rewardID {
			return true
		}
	}
	return false
}

// AccuracyPercent is the player's lifetime answer accuracy.
func (u *User) AccuracyPercent() float64 {
	total := u.CorrectAnswers + u.WrongAnswers
	if total == 0 {
		return 0
	}
	return float64(u.CorrectAnswers) / float64(total) * 100
}
