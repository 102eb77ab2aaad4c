package repositories

import (
	"context"

	"github.com/vocaplay/game-service/internal/models"
)

// UserRepository owns player/teacher/admin records. Creation and
// authentication live in the identity service; this side only reads and
// updates progression state.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error

	// CountStudents verifies how many of the given ids are active students;
	// used to validate task assignment targets.
	CountStudents(ctx context.Context, ids []uint) (int64, error)
}
