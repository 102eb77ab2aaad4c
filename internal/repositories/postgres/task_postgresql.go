package postgres

import (
	"context"
	"fmt"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"gorm.io/gorm"
)

type TaskPostgreSQL struct {
	db *gorm.DB
}

func NewTaskPostgreSQL(db *gorm.DB) repositories.TaskRepository {
	return &TaskPostgreSQL{db: db}
}

func (r *TaskPostgreSQL) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskPostgreSQL) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskPostgreSQL) ListByTeacher(ctx context.Context, teacherID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("teacher_id = ?", teacherID)
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	var tasks []*models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskPostgreSQL) ListByStudent(ctx context.Context, studentID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	// Assignments live in a jsonb column; containment finds tasks that hold
	// an assignment for this student without a join table.
	containment := fmt.Sprintf(`[{"student_id": %d}]`, studentID)
	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("assignments @> ?", containment)
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	var tasks []*models.Task
	if err := query.Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskPostgreSQL) ListDue(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if filters.DueBefore != nil {
		query = query.Where("due_date < ?", *filters.DueBefore)
	}
	var tasks []*models.Task
	if err := query.Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
