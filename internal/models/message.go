package models

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ConversationID uint `gorm:"not null;index" json:"conversation_id"`

	SenderID uint `gorm:"not null;index" json:"sender_id"`
	Sender   User `gorm:"foreignKey:SenderID" json:"sender"`

	Content string `gorm:"type:text;not null" json:"content"`

	Attachment string `json:"attachment,omitempty"`

	// ReadAt is set once by the read-receipt reconciler and never cleared.
	ReadAt *time.Time `json:"read_at"`
}

type MessageResponse struct {
	ID             uint         `json:"id"`
	ConversationID uint         `json:"conversation_id"`
	SenderID       uint         `json:"sender_id"`
	Sender         UserResponse `json:"sender"`
	Content        string       `json:"content"`
	Attachment     string       `json:"attachment,omitempty"`
	ReadAt         *time.Time   `json:"read_at"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Sender:         m.Sender.ToResponse(),
		Content:        m.Content,
		Attachment:     m.Attachment,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
