package models

import (
	"time"

	"gorm.io/gorm"
)

type Domain string

const (
	DomainVolume       Domain = "Volume"
	DomainTime         Domain = "Time"
	DomainMeasurement  Domain = "Measurement"
	DomainNature       Domain = "Nature"
	DomainCulture      Domain = "Culture"
	DomainFood         Domain = "Food"
	DomainClothing     Domain = "Clothing"
	DomainArchitecture Domain = "Architecture"
	DomainAgriculture  Domain = "Agriculture"
	DomainTrade        Domain = "Trade"
	DomainOther        Domain = "Other"
)

type Period string

const (
	PeriodPreClassical Period = "Pre-Classical"
	PeriodAncient      Period = "Ancient"
	PeriodClassical    Period = "Classical/Medieval"
	PeriodModern       Period = "Modern"
	PeriodContemporary Period = "Contemporary"
)

type StatusTag string

const (
	StatusTraditional StatusTag = "traditional; still seen rurally"
	StatusArchaic     StatusTag = "archaic"
	StatusObsolete    StatusTag = "obsolete"
	StatusRare        StatusTag = "rare"
	StatusHistorical  StatusTag = "historical"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

// Word is a vocabulary catalog entry. Words are never hard-deleted; retiring
// one flips IsActive so historical sessions keep resolving.
type Word struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Text             string          `json:"text" gorm:"column:text;not null;uniqueIndex;size:100" validate:"required,min=1,max=100"`
	MeaningPrimary   string          `json:"meaning_primary" gorm:"not null;size:500" validate:"required"`
	MeaningSecondary string          `json:"meaning_secondary" gorm:"size:500"`
	Domain           Domain          `json:"domain" gorm:"not null;index:idx_words_catalog" validate:"required,word_domain"`
	Period           Period          `json:"period" gorm:"not null;index:idx_words_catalog" validate:"required,word_period"`
	ModernEquivalent string          `json:"modern_equivalent" gorm:"size:200"`
	StatusTag        StatusTag       `json:"status_tag" gorm:"size:64"`
	Notes            string          `json:"notes" gorm:"type:text"`
	Difficulty       DifficultyLevel `json:"difficulty" gorm:"default:Medium;index:idx_words_catalog" validate:"omitempty,difficulty_level"`
	IsActive         bool            `json:"is_active" gorm:"default:true;index"`

	// Usage statistics, bumped once per answered question.
	TimesUsed    int `json:"times_used" gorm:"default:0"`
	CorrectCount int `json:"correct_count" gorm:"default:0"`
	WrongCount   int `json:"wrong_count" gorm:"default:0"`

	AddedBy   uint           `json:"added_by" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Word) TableName() string {
	return "words"
}

// RecordUsage applies the outcome of one answered question to the word's
// running statistics.
func (w *Word) RecordUsage(correct bool) {
	w.TimesUsed++
	if correct {
		w.CorrectCount++
	} else {
		w.WrongCount++
	}
}

// DifficultyScore estimates observed difficulty on a 0-100 scale, anchored at
// the curated difficulty and adjusted by actual answer accuracy.
func (w *Word) DifficultyScore() float64 {
	base := 50.0
	switch w.Difficulty {
	case DifficultyEasy:
		base = 20
	case DifficultyHard:
		base = 80
	}
	if w.TimesUsed == 0 {
		return base
	}
	accuracy := float64(w.CorrectCount) / float64(w.TimesUsed)
	score := base + (accuracy-0.5)*20
	return min(100, max(0, score))
}
