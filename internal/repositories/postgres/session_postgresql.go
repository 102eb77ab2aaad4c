package postgres

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (r *SessionPostgreSQL) Create(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.GameSession, error) {
	var session models.GameSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) Update(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *SessionPostgreSQL) GetActiveByUser(ctx context.Context, userID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SessionActive).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.GameSession, int64, error) {
	var sessions []*models.GameSession
	var total int64

	query := r.db.WithContext(ctx).Model(&models.GameSession{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.GameType != nil {
		query = query.Where("game_type = ?", *filters.GameType)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	if err := query.Order("started_at DESC").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *SessionPostgreSQL) Leaderboard(ctx context.Context, gameType *models.GameType, limit int) ([]repositories.LeaderboardEntry, error) {
	var entries []repositories.LeaderboardEntry

	query := r.db.WithContext(ctx).
		Table("game_sessions").
		Select(`game_sessions.user_id,
			users.username,
			users.level,
			SUM(game_sessions.score) AS total_score,
			COUNT(*) AS total_games,
			ROUND(AVG(game_sessions.score)::numeric, 2) AS avg_score,
			MAX(game_sessions.score) AS best_score`).
		Joins("JOIN users ON users.id = game_sessions.user_id").
		Where("game_sessions.status = ?", models.SessionCompleted).
		Group("game_sessions.user_id, users.username, users.level").
		Order("total_score DESC").
		Limit(limit)
	if gameType != nil {
		query = query.Where("game_sessions.game_type = ?", *gameType)
	}

	if err := query.Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SessionPostgreSQL) StatsByUser(ctx context.Context, userID uint) ([]repositories.GameTypeStat, error) {
	var stats []repositories.GameTypeStat
	err := r.db.WithContext(ctx).
		Table("game_sessions").
		Select("game_type, COUNT(*) AS count, ROUND(AVG(score)::numeric, 2) AS avg_score").
		Where("user_id = ? AND status = ?", userID, models.SessionCompleted).
		Group("game_type").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *SessionPostgreSQL) CountCompletedByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.GameSession{}).
		Where("user_id = ? AND status = ?", userID, models.SessionCompleted).
		Count(&total).Error
	return total, err
}
