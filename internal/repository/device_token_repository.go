package repository

import (
	"github.com/agrilink/agrichat-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Upsert registers a token, taking it over if another user held it before
// (devices change hands between accounts on shared phones).
func (r *DeviceTokenRepository) Upsert(token *models.DeviceToken) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_type", "updated_at"}),
	}).Create(token).Error
}

func (r *DeviceTokenRepository) DeleteByToken(userID uint, token string) error {
	return r.db.Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.DeviceToken{}).Error
}

func (r *DeviceTokenRepository) FindByUser(userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := r.db.Where("user_id = ?", userID).Find(&tokens).Error
	return tokens, err
}
