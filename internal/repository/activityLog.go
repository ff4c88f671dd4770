// Logging is a critical part of the system
// Every action (synchronous or asynchronous) should be logged.
// This helps in audit and will also be used to trace activites.
// ...
// We used polymorphism to define entity and entity_id
// This allow our table to be used for different part of the application
package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cradoe/verime/internal/models"
)

type ActivityRepository interface {
	Insert(log *models.ActivityLog) (*models.ActivityLog, error)
}

const (
	// ActivityLogUserEntity is used in activites that has to do with user account and the users table
	ActivityLogUserEntity = "user"

	// ActivityLogVerificationEntity is used in activites that has to do with verifications and the verifications table
	ActivityLogVerificationEntity = "verification"

	// ActivityLogScreeningEntity is used in activites that has to do with screening results
	ActivityLogScreeningEntity = "screening"
)

type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (repo *ActivityRepositoryImpl) Insert(log *models.ActivityLog) (*models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var inserted models.ActivityLog

	query := `
		INSERT INTO activity_logs (user_id, entity, entity_id, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.GetContext(ctx, &inserted, query,
		log.UserID,
		log.Entity,
		log.EntityId,
		log.Description,
	)

	if err != nil {
		return nil, err
	}

	return &inserted, nil
}
