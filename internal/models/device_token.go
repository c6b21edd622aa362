package models

import (
	"time"

	"gorm.io/gorm"
)

type DeviceType string

const (
	DeviceAndroid DeviceType = "android"
	DeviceIOS     DeviceType = "ios"
	DeviceWeb     DeviceType = "web"
)

// DeviceToken is one FCM registration token for one of a user's devices.
type DeviceToken struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Token      string     `gorm:"uniqueIndex;not null" json:"token"`
	DeviceType DeviceType `gorm:"type:varchar(16);default:'android'" json:"device_type"`
}

func (DeviceToken) TableName() string {
	return "fcm_tokens"
}
