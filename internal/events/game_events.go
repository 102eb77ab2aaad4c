package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/vocaplay/game-service/internal/models"
)

// EventType represents different types of game events
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"
	EventSessionAbandoned EventType = "session.abandoned"

	// Progression events
	EventAchievementEarned EventType = "achievement.earned"
	EventRewardEarned      EventType = "reward.earned"
	EventLevelUp           EventType = "progression.level_up"

	// Task events
	EventTaskAssigned  EventType = "task.assigned"
	EventTaskSubmitted EventType = "task.submitted"
	EventTaskOverdue   EventType = "task.overdue"
)

// GameEvent is the base event structure for all game events
type GameEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID      uint            `json:"session_id"`
	UserID         uint            `json:"user_id"`
	GameType       models.GameType `json:"game_type"`
	TotalQuestions int             `json:"total_questions"`
	StartedAt      time.Time       `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID      uint            `json:"session_id"`
	UserID         uint            `json:"user_id"`
	GameType       models.GameType `json:"game_type"`
	Score          int             `json:"score"`
	CorrectAnswers int             `json:"correct_answers"`
	TotalQuestions int             `json:"total_questions"`
	TimeSpent      int             `json:"time_spent"`
	CompletedAt    time.Time       `json:"completed_at"`
}

type SessionAbandonedEvent struct {
	SessionID   uint            `json:"session_id"`
	UserID      uint            `json:"user_id"`
	GameType    models.GameType `json:"game_type"`
	AbandonedAt time.Time       `json:"abandoned_at"`
}

// Progression event payloads

type AchievementEarnedEvent struct {
	UserID          uint      `json:"user_id"`
	AchievementID   uint      `json:"achievement_id"`
	AchievementName string    `json:"achievement_name"`
	PointsReward    int       `json:"points_reward"`
	EarnedAt        time.Time `json:"earned_at"`
}

type RewardEarnedEvent struct {
	UserID     uint                `json:"user_id"`
	RewardID   uint                `json:"reward_id"`
	RewardName string              `json:"reward_name"`
	Effect     models.RewardEffect `json:"effect"`
	EarnedAt   time.Time           `json:"earned_at"`
}

type LevelUpEvent struct {
	UserID   uint `json:"user_id"`
	OldLevel int  `json:"old_level"`
	NewLevel int  `json:"new_level"`
	Points   int  `json:"points"`
}

// Task event payloads

type TaskAssignedEvent struct {
	TaskID     uint       `json:"task_id"`
	TaskTitle  string     `json:"task_title"`
	TeacherID  uint       `json:"teacher_id"`
	StudentIDs []uint     `json:"student_ids"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

type TaskSubmittedEvent struct {
	TaskID      uint      `json:"task_id"`
	TaskTitle   string    `json:"task_title"`
	StudentID   uint      `json:"student_id"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type TaskOverdueEvent struct {
	TaskID     uint      `json:"task_id"`
	TaskTitle  string    `json:"task_title"`
	TeacherID  uint      `json:"teacher_id"`
	StudentIDs []uint    `json:"student_ids"`
	MarkedAt   time.Time `json:"marked_at"`
}

// Event factory functions

func newGameEvent(eventType EventType, data interface{}) *GameEvent {
	return &GameEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "game-service",
		Version:   "1.0",
		Data:      data,
	}
}

func NewSessionStartedEvent(session *models.GameSession) *GameEvent {
	return newGameEvent(EventSessionStarted, SessionStartedEvent{
		SessionID:      session.ID,
		UserID:         session.UserID,
		GameType:       session.GameType,
		TotalQuestions: session.TotalQuestions,
		StartedAt:      session.StartedAt,
	})
}

func NewSessionCompletedEvent(session *models.GameSession) *GameEvent {
	completedAt := time.Now()
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}
	return newGameEvent(EventSessionCompleted, SessionCompletedEvent{
		SessionID:      session.ID,
		UserID:         session.UserID,
		GameType:       session.GameType,
		Score:          session.Score,
		CorrectAnswers: session.CorrectCount,
		TotalQuestions: session.TotalQuestions,
		TimeSpent:      session.TimeSpent,
		CompletedAt:    completedAt,
	})
}

func NewSessionAbandonedEvent(session *models.GameSession) *GameEvent {
	return newGameEvent(EventSessionAbandoned, SessionAbandonedEvent{
		SessionID:   session.ID,
		UserID:      session.UserID,
		GameType:    session.GameType,
		AbandonedAt: time.Now(),
	})
}

func NewAchievementEarnedEvent(userID uint, achievement *models.Achievement, earnedAt time.Time) *GameEvent {
	return newGameEvent(EventAchievementEarned, AchievementEarnedEvent{
		UserID:          userID,
		AchievementID:   achievement.ID,
		AchievementName: achievement.Name,
		PointsReward:    achievement.PointsReward,
		EarnedAt:        earnedAt,
	})
}

func NewRewardEarnedEvent(userID uint, reward *models.Reward, earnedAt time.Time) *GameEvent {
	return newGameEvent(EventRewardEarned, RewardEarnedEvent{
		UserID:     userID,
		RewardID:   reward.ID,
		RewardName: reward.Name,
		Effect:     reward.Effect,
		EarnedAt:   earnedAt,
	})
}

func NewLevelUpEvent(userID uint, oldLevel, newLevel, points int) *GameEvent {
	return newGameEvent(EventLevelUp, LevelUpEvent{
		UserID:   userID,
		OldLevel: oldLevel,
		NewLevel: newLevel,
		Points:   points,
	})
}

func NewTaskAssignedEvent(task *models.Task, studentIDs []uint) *GameEvent {
	return newGameEvent(EventTaskAssigned, TaskAssignedEvent{
		TaskID:     task.ID,
		TaskTitle:  task.Title,
		TeacherID:  task.TeacherID,
		StudentIDs: studentIDs,
		DueDate:    &task.DueDate,
	})
}

func NewTaskSubmittedEvent(task *models.Task, studentID uint, score int) *GameEvent {
	return newGameEvent(EventTaskSubmitted, TaskSubmittedEvent{
		TaskID:      task.ID,
		TaskTitle:   task.Title,
		StudentID:   studentID,
		Score:       score,
		SubmittedAt: time.Now(),
	})
}

func NewTaskOverdueEvent(task *models.Task, studentIDs []uint) *GameEvent {
	return newGameEvent(EventTaskOverdue, TaskOverdueEvent{
		TaskID:     task.ID,
		TaskTitle:  task.Title,
		TeacherID:  task.TeacherID,
		StudentIDs: studentIDs,
		MarkedAt:   time.Now(),
	})
}

// GenerateEventID returns a unique identifier for an event envelope.
func GenerateEventID() string {
	return uuid.NewString()
}
