package postgres

import (
	"context"

	"github.com/vocaplay/game-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	words        repositories.WordRepository
	sessions     repositories.SessionRepository
	users        repositories.UserRepository
	achievements repositories.AchievementRepository
	rewards      repositories.RewardRepository
	tasks        repositories.TaskRepository
}

// NewRepository builds the Postgres-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:           db,
		words:        NewWordPostgreSQL(db),
		sessions:     NewSessionPostgreSQL(db),
		users:        NewUserPostgreSQL(db),
		achievements: NewAchievementPostgreSQL(db),
		rewards:      NewRewardPostgreSQL(db),
		tasks:        NewTaskPostgreSQL(db),
	}
}

func (r *gormRepository) Words() repositories.WordRepository               { return r.words }
func (r *gormRepository) Sessions() repositories.SessionRepository        { return r.sessions }
func (r *gormRepository) Users() repositories.UserRepository              { return r.users }
func (r *gormRepository) Achievements() repositories.AchievementRepository { return r.achievements }
func (r *gormRepository) Rewards() repositories.RewardRepository          { return r.rewards }
func (r *gormRepository) Tasks() repositories.TaskRepository              { return r.tasks }

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
