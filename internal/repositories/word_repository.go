package repositories

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
)

// WordRepository owns the vocabulary catalog.
type WordRepository interface {
	Create(ctx context.Context, word *models.Word) error
	CreateBatch(ctx context.Context, words []*models.Word) error
	GetByID(ctx context.Context, id uint) (*models.Word, error)
	Update(ctx context.Context, word *models.Word) error

	List(ctx context.Context, filters WordFilters) ([]*models.Word, int64, error)
	CountMatching(ctx context.Context, filters WordFilters) (int64, error)

	// Sample returns up to count active words uniformly at random, without
	// replacement, from the filtered pool.
	Sample(ctx context.Context, count int, filters WordFilters) ([]*models.Word, error)

	// SampleExcluding behaves like Sample but never returns the listed ids;
	// used to draw mcq distractors.
	SampleExcluding(ctx context.Context, count int, excludeIDs []uint, filters WordFilters) ([]*models.Word, error)

	// RecordUsage increments times_used and one of correct/wrong counters.
	RecordUsage(ctx context.Context, id uint, correct bool) error
}
