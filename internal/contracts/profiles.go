package contracts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
)

type profilesRepository struct {
	db *gorm.DB
}

// NewProfilesRepository builds the signature profile store.
func NewProfilesRepository(db *gorm.DB) SignatureProfiles {
	return &profilesRepository{db: db}
}

func (r *profilesRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.SignatureProfile, error) {
	var profile models.SignatureProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profilesRepository) Upsert(ctx context.Context, profile *models.SignatureProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"method", "artifact", "updated_at"}),
		}).
		Create(profile).Error
}
