package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/vocaplay/game-service/internal/events"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"github.com/vocaplay/game-service/internal/utils"
)

const defaultTaskPoints = 100
const defaultTaskTimeLimit = 30 // minutes

type taskService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	locks     *KeyedMutex
}

func NewTaskService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher, locks *KeyedMutex) TaskService {
	return &taskService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		locks:     locks,
	}
}

// ===== CORE TASK OPERATIONS =====

func (s *taskService) Create(ctx context.Context, req *CreateTaskRequest, teacherID uint) (*models.Task, error) {
	s.logger.Info("Creating task",
		"teacher_id", teacherID,
		"title", req.Title,
		"students", len(req.StudentIDs))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.DueDate.After(time.Now()) {
		return nil, ErrTaskDueDatePast
	}

	if err := s.requireStudents(ctx, req.StudentIDs); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		TeacherID:    teacherID,
		GameType:     req.GameType,
		Difficulty:   orDefault(req.Difficulty, models.DifficultyMedium),
		WordCount:    req.WordCount,
		Domain:       req.Domain,
		Period:       req.Period,
		TimeLimit:    orDefaultInt(req.TimeLimit, defaultTaskTimeLimit),
		PointsReward: orDefaultInt(req.PointsReward, defaultTaskPoints),
		DueDate:      req.DueDate,
		IsActive:     true,
		Instructions: req.Instructions,
	}

	now := time.Now()
	for _, studentID := range lo.Uniq(req.StudentIDs) {
		task.Assignments = append(task.Assignments, models.TaskAssignment{
			StudentID:  studentID,
			AssignedAt: now,
			Status:     models.AssignmentAssigned,
		})
	}
	task.TotalAssigned = len(task.Assignments)

	if err := s.repo.Tasks().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.TotalAssigned > 0 {
		s.publish(ctx, events.NewTaskAssignedEvent(task, lo.Uniq(req.StudentIDs)))
	}

	s.logger.Info("Task created", "task_id", task.ID, "teacher_id", teacherID)
	return task, nil
}

func (s *taskService) AssignStudents(ctx context.Context, taskID uint, studentIDs []uint, teacherID uint) (*models.Task, error) {
	if len(studentIDs) == 0 {
		return nil, NewValidationError("student_ids", "must not be empty", studentIDs)
	}
	if err := s.requireStudents(ctx, studentIDs); err != nil {
		return nil, err
	}

	s.locks.Lock(taskKey(taskID))
	defer s.locks.Unlock(taskKey(taskID))

	task, err := s.getOwnedTask(ctx, taskID, teacherID, "assign")
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrTaskNotActive
	}

	now := time.Now()
	var added []uint
	for _, studentID := range lo.Uniq(studentIDs) {
		if task.Assignment(studentID) != nil {
			continue
		}
		task.Assignments = append(task.Assignments, models.TaskAssignment{
			StudentID:  studentID,
			AssignedAt: now,
			Status:     models.AssignmentAssigned,
		})
		added = append(added, studentID)
	}
	task.TotalAssigned += len(added)

	if err := s.repo.Tasks().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if len(added) > 0 {
		s.publish(ctx, events.NewTaskAssignedEvent(task, added))
	}

	s.logger.Info("Students assigned to task",
		"task_id", taskID,
		"added", len(added),
		"total_assigned", task.TotalAssigned)
	return task, nil
}

// UpdateProgress is the teacher-driven transition path. Completion runs
// through the same recordCompletion as student self-submission, but never
// awards points.
func (s *taskService) UpdateProgress(ctx context.Context, taskID uint, req *UpdateProgressRequest, teacherID uint) (*models.Task, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.locks.Lock(taskKey(taskID))
	defer s.locks.Unlock(taskKey(taskID))

	task, err := s.getOwnedTask(ctx, taskID, teacherID, "update_progress")
	if err != nil {
		return nil, err
	}
	s.markOverdueLocked(ctx, task)

	assignment := task.Assignment(req.StudentID)
	if assignment == nil {
		return nil, ErrStudentNotAssigned
	}

	if req.Status == models.AssignmentCompleted {
		score := 0
		if req.Score != nil {
			score = *req.Score
		}
		if err := s.recordCompletion(ctx, task, assignment, score, req.Feedback); err != nil {
			return nil, err
		}
	} else {
		assignment.Status = req.Status
		if req.Score != nil {
			assignment.Score = *req.Score
		}
		if req.Feedback != nil {
			assignment.Feedback = req.Feedback
		}
		if err := s.repo.Tasks().Update(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	}

	s.logger.Info("Task progress updated",
		"task_id", taskID,
		"student_id", req.StudentID,
		"status", req.Status)
	return task, nil
}

// Submit is the student self-service path: marks the caller's own assignment
// completed and awards the task's point reward through the progression
// engine.
func (s *taskService) Submit(ctx context.Context, taskID uint, req *SubmitTaskRequest, studentID uint) (*TaskSubmissionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.locks.Lock(userKey(studentID))
	defer s.locks.Unlock(userKey(studentID))
	s.locks.Lock(taskKey(taskID))
	defer s.locks.Unlock(taskKey(taskID))

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrTaskNotActive
	}
	s.markOverdueLocked(ctx, task)

	assignment := task.Assignment(studentID)
	if assignment == nil {
		return nil, ErrStudentNotAssigned
	}

	var user *models.User
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		user, err = tx.Users().GetByID(ctx, studentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		if err := s.completeAssignment(task, assignment, req.Score, nil); err != nil {
			return err
		}
		AddPoints(user, task.PointsReward)

		if err := tx.Tasks().Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewTaskSubmittedEvent(task, studentID, req.Score))

	s.logger.Info("Task submitted",
		"task_id", taskID,
		"student_id", studentID,
		"score", req.Score,
		"points_awarded", task.PointsReward)

	return &TaskSubmissionResult{
		Task:          task,
		PointsAwarded: task.PointsReward,
		TotalPoints:   user.Points,
		Level:         user.Level,
	}, nil
}

// recordCompletion persists a completion transition without touching user
// progression.
func (s *taskService) recordCompletion(ctx context.Context, task *models.Task, assignment *models.TaskAssignment, score int, feedback *string) error {
	if err := s.completeAssignment(task, assignment, score, feedback); err != nil {
		return err
	}
	if err := s.repo.Tasks().Update(ctx, task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// completeAssignment applies the shared completion bookkeeping: one terminal
// transition per assignment, completion totals, and the average over
// completed assignments.
func (s *taskService) completeAssignment(task *models.Task, assignment *models.TaskAssignment, score int, feedback *string) error {
	switch assignment.Status {
	case models.AssignmentCompleted:
		return ErrTaskAlreadyCompleted
	case models.AssignmentOverdue:
		return ErrAssignmentOverdue
	}

	now := time.Now()
	assignment.Status = models.AssignmentCompleted
	assignment.Score = score
	assignment.CompletedAt = &now
	if feedback != nil {
		assignment.Feedback = feedback
	}
	task.TotalCompleted++
	task.RecomputeAverageScore()
	return nil
}

// ===== OVERDUE HANDLING =====

func (s *taskService) CheckOverdue(ctx context.Context, taskID uint) (*models.Task, error) {
	s.locks.Lock(taskKey(taskID))
	defer s.locks.Unlock(taskKey(taskID))

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if changed := s.markOverdueLocked(ctx, task); changed > 0 {
		s.logger.Info("Assignments marked overdue", "task_id", taskID, "count", changed)
	}
	return task, nil
}

// SweepOverdue flips stale assignments on every active task past its due
// date. Runs from the explicit endpoint and from the background scheduler.
func (s *taskService) SweepOverdue(ctx context.Context) (int, error) {
	now := time.Now()
	due, err := s.repo.Tasks().ListDue(ctx, repositories.TaskFilters{DueBefore: &now})
	if err != nil {
		return 0, fmt.Errorf("failed to list due tasks: %w", err)
	}

	total := 0
	for _, task := range due {
		s.locks.Lock(taskKey(task.ID))
		total += s.markOverdueLocked(ctx, task)
		s.locks.Unlock(taskKey(task.ID))
	}

	if total > 0 {
		s.logger.Info("Overdue sweep finished", "tasks", len(due), "assignments_flipped", total)
	}
	return total, nil
}

// markOverdueLocked runs the lazy overdue check on a task already held under
// its key lock, persisting and publishing only when something changed. The
// event carries only the assignments flipped by this pass, so repeated sweeps
// do not re-notify students already overdue.
func (s *taskService) markOverdueLocked(ctx context.Context, task *models.Task) int {
	flipped := task.MarkOverdue(time.Now())
	if len(flipped) == 0 {
		return 0
	}
	if err := s.repo.Tasks().Update(ctx, task); err != nil {
		s.logger.Error("Failed to persist overdue transitions", "task_id", task.ID, "error", err)
		return 0
	}

	s.publish(ctx, events.NewTaskOverdueEvent(task, flipped))
	return len(flipped)
}

// ===== GET OPERATIONS =====

func (s *taskService) GetByID(ctx context.Context, taskID uint, userID uint) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.TeacherID != userID && task.Assignment(userID) == nil {
		return nil, NewPermissionError(userID, taskID, "task", "read", "not owner or assignee")
	}
	return task, nil
}

func (s *taskService) ListByTeacher(ctx context.Context, teacherID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	tasks, total, err := s.repo.Tasks().ListByTeacher(ctx, teacherID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (s *taskService) ListByStudent(ctx context.Context, studentID uint, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	tasks, total, err := s.repo.Tasks().ListByStudent(ctx, studentID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (s *taskService) Statistics(ctx context.Context, taskID uint, teacherID uint) (*models.TaskStatistics, error) {
	task, err := s.getOwnedTask(ctx, taskID, teacherID, "view_statistics")
	if err != nil {
		return nil, err
	}
	stats := task.Statistics()
	return &stats, nil
}

// ===== HELPERS =====

func (s *taskService) getTask(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.repo.Tasks().GetByID(ctx, taskID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskService) getOwnedTask(ctx context.Context, taskID, teacherID uint, action string) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.TeacherID != teacherID {
		return nil, NewPermissionError(teacherID, taskID, "task", action, "not owned by teacher")
	}
	return task, nil
}

// requireStudents verifies every id belongs to an active student.
func (s *taskService) requireStudents(ctx context.Context, studentIDs []uint) error {
	if len(studentIDs) == 0 {
		return nil
	}
	unique := lo.Uniq(studentIDs)
	count, err := s.repo.Users().CountStudents(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to verify students: %w", err)
	}
	if count != int64(len(unique)) {
		return NewValidationError("student_ids", "contains ids that are not active students", studentIDs)
	}
	return nil
}

func (s *taskService) publish(ctx context.Context, event *events.GameEvent) {
	if err := s.publisher.PublishGameEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func orDefault(d models.DifficultyLevel, def models.DifficultyLevel) models.DifficultyLevel {
	if d == "" {
		return def
	}
	return d
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
