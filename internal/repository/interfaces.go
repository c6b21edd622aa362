package repository

import (
	"time"

	"github.com/agrilink/agrichat-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByPhone(phone string) (*models.User, error)
}

// ConversationRepositoryInterface defines the contract for conversation repository operations
type ConversationRepositoryInterface interface {
	Create(conv *models.Conversation) error
	FindByID(id uint) (*models.Conversation, error)
	FindByPair(userA, userB uint) (*models.Conversation, error)
	UpdateProduct(id uint, productID uint) error
	TouchLastMessage(id uint, at time.Time) error
	ListForUser(userID uint, limit int) ([]ConversationListRow, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByConversation(conversationID uint, cursor uint, limit int) ([]models.Message, error)
	MarkConversationRead(conversationID, readerID uint, at time.Time) ([]ReadReceiptRow, error)
	CountUnread(conversationID, readerID uint) (int64, error)
}

// ProductRepositoryInterface defines the contract for product lookups
type ProductRepositoryInterface interface {
	FindByID(id uint) (*models.Product, error)
}

// DeviceTokenRepositoryInterface defines the contract for FCM token storage
type DeviceTokenRepositoryInterface interface {
	Upsert(token *models.DeviceToken) error
	DeleteByToken(userID uint, token string) error
	FindByUser(userID uint) ([]models.DeviceToken, error)
}

// AlertLogRepositoryInterface defines the contract for the proactive-alert send log
type AlertLogRepositoryInterface interface {
	Create(entry *models.WeatherAlertLog) error
	CountSince(userID uint, alertType string, since time.Time) (int64, error)
}
