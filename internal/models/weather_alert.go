package models

import (
	"time"
)

// WeatherAlertLog is one recorded proactive alert send. The daily rate gate is
// derived by counting these rows, not stored anywhere else.
type WeatherAlertLog struct {
	ID uint `gorm:"primarykey" json:"id"`

	UserID      uint      `gorm:"not null;index:idx_alert_user_type" json:"user_id"`
	AlertType   string    `gorm:"type:varchar(32);not null;index:idx_alert_user_type" json:"alert_type"`
	WeatherData string    `gorm:"type:jsonb" json:"weather_data"`
	SentAt      time.Time `gorm:"not null;index" json:"sent_at"`
}

func (WeatherAlertLog) TableName() string {
	return "weather_alerts_sent"
}
