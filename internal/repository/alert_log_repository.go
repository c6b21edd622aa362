package repository

import (
	"time"

	"github.com/agrilink/agrichat-backend/internal/models"
	"gorm.io/gorm"
)

type AlertLogRepository struct {
	db *gorm.DB
}

func NewAlertLogRepository(db *gorm.DB) *AlertLogRepository {
	return &AlertLogRepository{db: db}
}

func (r *AlertLogRepository) Create(entry *models.WeatherAlertLog) error {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	return r.db.Create(entry).Error
}

func (r *AlertLogRepository) CountSince(userID uint, alertType string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.WeatherAlertLog{}).
		Where("user_id = ? AND alert_type = ? AND sent_at >= ?", userID, alertType, since).
		Count(&count).Error
	return count, err
}
