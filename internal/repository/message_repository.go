package repository

import (
	"time"

	"github.com/agrilink/agrichat-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	return &message, err
}

// FindByConversation returns messages in chronological order. A non-zero
// cursor fetches messages older than the given message id.
func (r *MessageRepository) FindByConversation(conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.Preload("Sender").Where("conversation_id = ?", conversationID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}

	var messages []models.Message
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&messages).Error

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, err
}

// ReadReceiptRow is one message flipped to read: its id plus the original sender.
type ReadReceiptRow struct {
	MessageID uint `gorm:"column:message_id"`
	SenderID  uint `gorm:"column:sender_id"`
}

// MarkConversationRead sets read_at on every unread message in the
// conversation authored by someone other than the reader. The read_at IS NULL
// guard on the update keeps the timestamp monotonic: a row already read is
// never rewritten.
func (r *MessageRepository) MarkConversationRead(conversationID, readerID uint, at time.Time) ([]ReadReceiptRow, error) {
	var rows []ReadReceiptRow
	err := r.db.Model(&models.Message{}).
		Select("id AS message_id, sender_id").
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MessageID)
	}

	err = r.db.Model(&models.Message{}).
		Where("id IN ? AND read_at IS NULL", ids).
		Update("read_at", at).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MessageRepository) CountUnread(conversationID, readerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Count(&count).Error
	return count, err
}
