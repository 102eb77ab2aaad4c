package services

import (
	"context"
	"io"
	"time"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
)

// ===== GAME SERVICE =====

type GameService interface {
	// Core session lifecycle
	Start(ctx context.Context, req *StartSessionRequest, userID uint) (*SessionResponse, error)
	SubmitAnswer(ctx context.Context, sessionID uint, req *SubmitAnswerRequest, userID uint) (*AnswerResult, error)
	UseHint(ctx context.Context, sessionID uint, req *UseHintRequest, userID uint) (*HintResult, error)
	Complete(ctx context.Context, sessionID uint, userID uint) (*CompletionResult, error)
	Abandon(ctx context.Context, sessionID uint, userID uint) (*SessionResponse, error)

	// Get operations
	GetByID(ctx context.Context, sessionID uint, userID uint) (*SessionResponse, error)
	GetActive(ctx context.Context, userID uint) (*SessionResponse, error)
	History(ctx context.Context, userID uint, filters repositories.SessionFilters) ([]*SessionResponse, int64, error)

	// Aggregates
	Stats(ctx context.Context, userID uint) (*PlayerStats, error)
	Leaderboard(ctx context.Context, gameType *models.GameType, limit int) ([]repositories.LeaderboardEntry, error)
}

type StartSessionRequest struct {
	GameType   models.GameType         `json:"game_type" validate:"required,game_type"`
	WordCount  int                     `json:"word_count" validate:"required,min=1,max=50"`
	Difficulty *models.DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`
	Domain     *models.Domain          `json:"domain,omitempty" validate:"omitempty,word_domain"`
	Period     *models.Period          `json:"period,omitempty" validate:"omitempty,word_period"`
}

type SubmitAnswerRequest struct {
	QuestionIndex int    `json:"question_index" validate:"min=0"`
	Answer        string `json:"answer" validate:"required"`
	TimeSpent     int    `json:"time_spent" validate:"min=0"` // seconds
}

type UseHintRequest struct {
	QuestionIndex int `json:"question_index" validate:"min=0"`
}

// QuestionView is the client-facing rendering of a question. The correct
// answer and the match pairing stay hidden while the session is active.
type QuestionView struct {
	WordID        uint                `json:"word_id"`
	Prompt        string              `json:"prompt"`
	Options       []string            `json:"options,omitempty"`
	CorrectAnswer string              `json:"correct_answer,omitempty"`
	UserAnswer    *string             `json:"user_answer"`
	IsCorrect     *bool               `json:"is_correct,omitempty"`
	TimeSpent     int                 `json:"time_spent"`
	HintsUsed     int                 `json:"hints_used"`
	WordTokens    []models.MatchToken `json:"word_tokens,omitempty"`
	MeaningTokens []models.MatchToken `json:"meaning_tokens,omitempty"`
	CorrectPairs  map[string]string   `json:"correct_pairs,omitempty"`
}

type SessionResponse struct {
	ID             uint                   `json:"id"`
	UserID         uint                   `json:"user_id"`
	GameType       models.GameType        `json:"game_type"`
	Status         models.SessionStatus   `json:"status"`
	Score          int                    `json:"score"`
	TotalQuestions int                    `json:"total_questions"`
	CorrectCount   int                    `json:"correct_count"`
	WrongCount     int                    `json:"wrong_count"`
	TimeSpent      int                    `json:"time_spent"`
	Difficulty     models.DifficultyLevel `json:"difficulty"`
	PointsEarned   int                    `json:"points_earned"`
	Questions      []QuestionView         `json:"questions"`
	StartedAt      time.Time              `json:"started_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
}

type AnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Score         int    `json:"score"`
	CorrectCount  int    `json:"correct_count"`
	WrongCount    int    `json:"wrong_count"`
}

type HintResult struct {
	Hint      string `json:"hint"`
	Exhausted bool   `json:"exhausted"`
	HintsUsed int    `json:"hints_used"`
}

type EarnedAchievementResult struct {
	Achievement  *models.Achievement `json:"achievement"`
	PointsReward int                 `json:"points_reward"`
}

type EarnedRewardResult struct {
	Reward *models.Reward      `json:"reward"`
	Effect models.RewardEffect `json:"effect"`
}

type CompletionResult struct {
	Session         *SessionResponse          `json:"session"`
	PointsEarned    int                       `json:"points_earned"`
	NewAchievements []EarnedAchievementResult `json:"new_achievements"`
	NewRewards      []EarnedRewardResult      `json:"new_rewards"`
	LeveledUp       bool                      `json:"leveled_up"`
	Level           int                       `json:"level"`
	TotalPoints     int                       `json:"total_points"`
}

type PlayerStats struct {
	UserID           uint                         `json:"user_id"`
	Points           int                          `json:"points"`
	Level            int                          `json:"level"`
	TotalGamesPlayed int                          `json:"total_games_played"`
	CorrectAnswers   int                          `json:"correct_answers"`
	WrongAnswers     int                          `json:"wrong_answers"`
	Accuracy         float64                      `json:"accuracy"`
	BonusHints       int                          `json:"bonus_hints"`
	Title            *string                      `json:"title,omitempty"`
	Achievements     int                          `json:"achievements"`
	Badges           int                          `json:"badges"`
	ByGameType       []repositories.GameTypeStat  `json:"by_game_type"`
}

// ===== CATALOG SERVICE (achievements + rewards) =====

type CatalogService interface {
	CreateAchievement(ctx context.Context, req *CreateAchievementRequest, creatorID uint) (*models.Achievement, error)
	ListAchievements(ctx context.Context, includeSecret bool) ([]*models.Achievement, error)
	CreateReward(ctx context.Context, req *CreateRewardRequest, creatorID uint) (*models.Reward, error)
	ListRewards(ctx context.Context) ([]*models.Reward, error)

	// AvailableRewards filters the active catalog by the user's current gates.
	AvailableRewards(ctx context.Context, userID uint) ([]*models.Reward, error)
}

type CreateAchievementRequest struct {
	Name         string                     `json:"name" validate:"required,max=100"`
	Description  string                     `json:"description" validate:"required"`
	Icon         string                     `json:"icon" validate:"max=500"`
	Category     models.AchievementCategory `json:"category" validate:"required,oneof=learning gaming social special milestone"`
	Criteria     models.AchievementCriteria `json:"criteria" validate:"required"`
	Rarity       models.Rarity              `json:"rarity" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	PointsReward int                        `json:"points_reward" validate:"min=0"`
	IsSecret     bool                       `json:"is_secret"`
}

type CreateRewardRequest struct {
	Name              string                   `json:"name" validate:"required,max=100"`
	Description       string                   `json:"description" validate:"required"`
	Type              models.RewardType        `json:"type" validate:"required,oneof=badge title unlock bonus_points special_access"`
	Icon              string                   `json:"icon" validate:"max=500"`
	PointsRequired    int                      `json:"points_required" validate:"min=0"`
	LevelRequired     int                      `json:"level_required" validate:"omitempty,min=1"`
	Rarity            models.Rarity            `json:"rarity" validate:"omitempty,oneof=common uncommon rare epic legendary"`
	Repeatable        bool                     `json:"repeatable"`
	SpecialConditions *models.RewardConditions `json:"special_conditions,omitempty"`
	Effect            models.RewardEffect      `json:"effect" validate:"required,oneof=points_boost unlock_content special_badge title_change bonus_hints"`
	Value             int                      `json:"value" validate:"min=0"`
}

// ===== TASK SERVICE =====

type TaskService interface {
	Create(ctx context.Context, req *CreateTaskRequest, teacherID uint) (*models.Task, error)
	GetByID(ctx context.Context, taskID uint, userID uint) (*models.Task, error)
	ListByTeacher(ctx context.Context, teacherID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error)
	ListByStudent(ctx context.Context, studentID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error)

	AssignStudents(ctx context.Context, taskID uint, studentIDs []uint, teacherID uint) (*models.Task, error)
	UpdateProgress(ctx context.Context, taskID uint, req *UpdateProgressRequest, teacherID uint) (*models.Task, error)
	Submit(ctx context.Context, taskID uint, req *SubmitTaskRequest, studentID uint) (*TaskSubmissionResult, error)

	CheckOverdue(ctx context.Context, taskID uint) (*models.Task, error)
	SweepOverdue(ctx context.Context) (int, error)
	Statistics(ctx context.Context, taskID uint, teacherID uint) (*models.TaskStatistics, error)
}

type CreateTaskRequest struct {
	Title        string                 `json:"title" validate:"required,max=200"`
	Description  string                 `json:"description" validate:"required"`
	GameType     models.TaskGameType    `json:"game_type" validate:"required,oneof=match mcq hints jumbled mixed"`
	Difficulty   models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	WordCount    int                    `json:"word_count" validate:"required,min=5,max=50"`
	Domain       models.Domain          `json:"domain,omitempty"`
	Period       models.Period          `json:"period,omitempty"`
	TimeLimit    int                    `json:"time_limit" validate:"omitempty,min=1,max=180"` // minutes
	PointsReward int                    `json:"points_reward" validate:"omitempty,min=0"`
	DueDate      time.Time              `json:"due_date" validate:"required"`
	Instructions string                 `json:"instructions"`
	StudentIDs   []uint                 `json:"student_ids" validate:"omitempty,dive,min=1"`
}

type UpdateProgressRequest struct {
	StudentID uint                    `json:"student_id" validate:"required,min=1"`
	Status    models.AssignmentStatus `json:"status" validate:"required,oneof=assigned in_progress completed overdue"`
	Score     *int                    `json:"score,omitempty" validate:"omitempty,min=0"`
	Feedback  *string                 `json:"feedback,omitempty"`
}

type SubmitTaskRequest struct {
	Score int `json:"score" validate:"min=0"`
}

type TaskSubmissionResult struct {
	Task          *models.Task `json:"task"`
	PointsAwarded int          `json:"points_awarded"`
	TotalPoints   int          `json:"total_points"`
	Level         int          `json:"level"`
}

// ===== WORD SERVICE =====

type WordService interface {
	Create(ctx context.Context, req *CreateWordRequest, addedBy uint) (*models.Word, error)
	GetByID(ctx context.Context, id uint) (*models.Word, error)
	Update(ctx context.Context, id uint, req *UpdateWordRequest) (*models.Word, error)
	Deactivate(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.WordFilters) ([]*models.Word, int64, error)

	ImportXLSX(ctx context.Context, r io.Reader, addedBy uint) (*ImportResult, error)
	ExportXLSX(ctx context.Context, filters repositories.WordFilters, w io.Writer) error
}

type CreateWordRequest struct {
	Text             string                 `json:"text" validate:"required,min=1,max=100"`
	MeaningPrimary   string                 `json:"meaning_primary" validate:"required,max=500"`
	MeaningSecondary string                 `json:"meaning_secondary" validate:"max=500"`
	Domain           models.Domain          `json:"domain" validate:"required,word_domain"`
	Period           models.Period          `json:"period" validate:"required,word_period"`
	ModernEquivalent string                 `json:"modern_equivalent" validate:"max=200"`
	StatusTag        models.StatusTag       `json:"status_tag"`
	Notes            string                 `json:"notes"`
	Difficulty       models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
}

type UpdateWordRequest struct {
	MeaningPrimary   *string                 `json:"meaning_primary,omitempty" validate:"omitempty,max=500"`
	MeaningSecondary *string                 `json:"meaning_secondary,omitempty" validate:"omitempty,max=500"`
	Domain           *models.Domain          `json:"domain,omitempty" validate:"omitempty,word_domain"`
	Period           *models.Period          `json:"period,omitempty" validate:"omitempty,word_period"`
	ModernEquivalent *string                 `json:"modern_equivalent,omitempty" validate:"omitempty,max=200"`
	StatusTag        *models.StatusTag       `json:"status_tag,omitempty"`
	Notes            *string                 `json:"notes,omitempty"`
	Difficulty       *models.DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`
	IsActive         *bool                   `json:"is_active,omitempty"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
