package postgres

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories"
	"gorm.io/gorm"
)

type WordPostgreSQL struct {
	db *gorm.DB
}

func NewWordPostgreSQL(db *gorm.DB) repositories.WordRepository {
	return &WordPostgreSQL{db: db}
}

func (r *WordPostgreSQL) Create(ctx context.Context, word *models.Word) error {
	return r.db.WithContext(ctx).Create(word).Error
}

func (r *WordPostgreSQL) CreateBatch(ctx context.Context, words []*models.Word) error {
	if len(words) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(words, 100).Error
}

func (r *WordPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Word, error) {
	var word models.Word
	if err := r.db.WithContext(ctx).First(&word, id).Error; err != nil {
		return nil, err
	}
	return &word, nil
}

func (r *WordPostgreSQL) Update(ctx context.Context, word *models.Word) error {
	return r.db.WithContext(ctx).Save(word).Error
}

func (r *WordPostgreSQL) List(ctx context.Context, filters repositories.WordFilters) ([]*models.Word, int64, error) {
	var words []*models.Word
	var total int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Word{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	if err := query.Order("text ASC").Find(&words).Error; err != nil {
		return nil, 0, err
	}
	return words, total, nil
}

func (r *WordPostgreSQL) CountMatching(ctx context.Context, filters repositories.WordFilters) (int64, error) {
	var total int64
	err := r.applyFilters(r.db.WithContext(ctx).Model(&models.Word{}), filters).Count(&total).Error
	return total, err
}

func (r *WordPostgreSQL) Sample(ctx context.Context, count int, filters repositories.WordFilters) ([]*models.Word, error) {
	return r.sample(ctx, count, nil, filters)
}

func (r *WordPostgreSQL) SampleExcluding(ctx context.Context, count int, excludeIDs []uint, filters repositories.WordFilters) ([]*models.Word, error) {
	return r.sample(ctx, count, excludeIDs, filters)
}

func (r *WordPostgreSQL) sample(ctx context.Context, count int, excludeIDs []uint, filters repositories.WordFilters) ([]*models.Word, error) {
	var words []*models.Word
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Word{}), filters)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if err := query.Order("RANDOM()").Limit(count).Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (r *WordPostgreSQL) RecordUsage(ctx context.Context, id uint, correct bool) error {
	column := "wrong_count"
	if correct {
		column = "correct_count"
	}
	return r.db.WithContext(ctx).Model(&models.Word{}).Where("id = ?", id).
		Updates(map[string]any{
			"times_used": gorm.Expr("times_used + 1"),
			column:       gorm.Expr(column + " + 1"),
		}).Error
}

func (r *WordPostgreSQL) applyFilters(query *gorm.DB, filters repositories.WordFilters) *gorm.DB {
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Domain != nil {
		query = query.Where("domain = ?", *filters.Domain)
	}
	if filters.Period != nil {
		query = query.Where("period = ?", *filters.Period)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"text ILIKE ? OR meaning_primary ILIKE ? OR meaning_secondary ILIKE ? OR modern_equivalent ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	return query
}
