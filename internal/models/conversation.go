package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a durable two-party thread. The participant pair is stored
// normalized (User1ID < User2ID) so the unordered pair maps to exactly one row.
type Conversation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User1ID uint `gorm:"not null;index:idx_conversation_pair" json:"user1_id"`
	User2ID uint `gorm:"not null;index:idx_conversation_pair" json:"user2_id"`

	// Optional product the conversation started from (marketplace inquiry).
	ProductID *uint    `gorm:"index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
}

// NormalizePair orders an unordered participant pair for storage and lookup.
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

func (c *Conversation) HasParticipant(userID uint) bool {
	return userID != 0 && (c.User1ID == userID || c.User2ID == userID)
}

// PeerOf returns the other participant of the pair.
func (c *Conversation) PeerOf(userID uint) uint {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

type ConversationResponse struct {
	ID            uint      `json:"id"`
	User1ID       uint      `json:"user1_id"`
	User2ID       uint      `json:"user2_id"`
	ProductID     *uint     `json:"product_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *Conversation) ToResponse() ConversationResponse {
	return ConversationResponse{
		ID:            c.ID,
		User1ID:       c.User1ID,
		User2ID:       c.User2ID,
		ProductID:     c.ProductID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}
