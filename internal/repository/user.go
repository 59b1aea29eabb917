package repository

import (
	"context"

	constant "github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	*baseRepository
}

// Users are owned by the session service, this table is a read-only mirror.
func (ur UserRepository) GetByID(ctx context.Context, tx *gorm.DB, userID string) (*model.User, error) {
	ur.logger.Debugf("Get user by id: %s", userID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var user model.User
	if err := ur.getDB(tx).WithContext(ctx).Where("id = ?", userID).Take(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
