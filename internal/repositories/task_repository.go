package repositories

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
)

// TaskRepository owns teacher-issued tasks and their embedded assignments.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error

	ListByTeacher(ctx context.Context, teacherID uint, filters TaskFilters) ([]*models.Task, int64, error)

	// ListByStudent returns active tasks that contain an assignment for the
	// student.
	ListByStudent(ctx context.Context, studentID uint, filters TaskFilters) ([]*models.Task, int64, error)

	// ListDue returns active tasks whose due date has passed; feeds the
	// overdue sweep.
	ListDue(ctx context.Context, filters TaskFilters) ([]*models.Task, error)
}
