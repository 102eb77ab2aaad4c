package models

import (
	"time"

	"gorm.io/datatypes"
)

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentOverdue    AssignmentStatus = "overdue"
)

type TaskGameType string

const (
	TaskGameMatch   TaskGameType = "match"
	TaskGameMCQ     TaskGameType = "mcq"
	TaskGameHints   TaskGameType = "hints"
	TaskGameJumbled TaskGameType = "jumbled"
	TaskGameMixed   TaskGameType = "mixed"
)

// TaskAssignment is one student's slot on a task, embedded in the task's
// jsonb assignment list.
type TaskAssignment struct {
	StudentID   uint             `json:"student_id"`
	AssignedAt  time.Time        `json:"assigned_at"`
	CompletedAt *time.Time       `json:"completed_at"`
	Status      AssignmentStatus `json:"status"`
	Score       int              `json:"score"`
	Feedback    *string          `json:"feedback"`
}

// Task is a teacher-issued assignment tracked per student.
type Task struct {
	ID          uint                                 `json:"id" gorm:"primaryKey"`
	Title       string                               `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Description string                               `json:"description" gorm:"not null;type:text" validate:"required"`
	TeacherID   uint                                 `json:"teacher_id" gorm:"not null;index"`
	Assignments datatypes.JSONSlice[TaskAssignment]  `json:"assigned_students"`
	GameType    TaskGameType                         `json:"game_type" gorm:"not null" validate:"required,oneof=match mcq hints jumbled mixed"`
	Difficulty  DifficultyLevel                      `json:"difficulty" gorm:"default:Medium" validate:"omitempty,difficulty_level"`
	WordCount   int                                  `json:"word_count" gorm:"not null" validate:"required,min=5,max=50"`
	Domain      Domain                               `json:"domain" gorm:"default:All"` // "All" disables the filter
	Period      Period                               `json:"period" gorm:"default:All"`
	TimeLimit   int                                  `json:"time_limit" gorm:"default:30"` // minutes
	PointsReward int                                 `json:"points_reward" gorm:"default:100"`
	DueDate     time.Time                            `json:"due_date" gorm:"not null;index" validate:"required"`
	IsActive    bool                                 `json:"is_active" gorm:"default:true;index"`
	Instructions string                              `json:"instructions" gorm:"type:text"`

	TotalAssigned  int     `json:"total_assigned" gorm:"default:0"`
	TotalCompleted int     `json:"total_completed" gorm:"default:0"`
	AverageScore   float64 `json:"average_score" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// Assignment returns the assignment record for a student, or nil.
func (t *Task) Assignment(studentID uint) *TaskAssignment {
	for i := range t.Assignments {
		if t.Assignments[i].StudentID == studentID {
			return &t.Assignments[i]
		}
	}
	return nil
}

// RecomputeAverageScore recalculates the mean score across completed
// assignments.
func (t *Task) RecomputeAverageScore() {
	var sum, n int
	for _, a := range t.Assignments {
		if a.Status == AssignmentCompleted {
			sum += a.Score
			n++
		}
	}
	if n == 0 {
		t.AverageScore = 0
		return
	}
	t.AverageScore = float64(sum) / float64(n)
}

// MarkOverdue flips every stale assignment to overdue once the due date has
// passed. Completed and already-overdue slots are untouched. Returns the
// student ids of the assignments flipped by this call.
func (t *Task) MarkOverdue(now time.Time) []uint {
	if !t.DueDate.Before(now) {
		return nil
	}
	var flipped []uint
	for i := range t.Assignments {
		switch t.Assignments[i].Status {
		case AssignmentCompleted, AssignmentOverdue:
			continue
		default:
			t.Assignments[i].Status = AssignmentOverdue
			flipped = append(flipped, t.Assignments[i].StudentID)
		}
	}
	return flipped
}

// Statistics summarizes per-status assignment counts.
type TaskStatistics struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Overdue        int     `json:"overdue"`
	NotStarted     int     `json:"not_started"`
	CompletionRate float64 `json:"completion_rate"`
	AverageScore   float64 `json:"average_score"`
}

func (t *Task) Statistics() TaskStatistics {
	stats := TaskStatistics{Total: len(t.Assignments), AverageScore: t.AverageScore}
	for _, a := range t.Assignments {
		switch a.Status {
		case AssignmentCompleted:
			stats.Completed++
		case AssignmentInProgress:
			stats.InProgress++
		case AssignmentOverdue:
			stats.Overdue++
		case AssignmentAssigned:
			stats.NotStarted++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats
}
