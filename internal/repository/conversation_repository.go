package repository

import (
	"strings"
	"time"

	"github.com/agrilink/agrichat-backend/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conv *models.Conversation) error {
	conv.User1ID, conv.User2ID = models.NormalizePair(conv.User1ID, conv.User2ID)
	return r.db.Create(conv).Error
}

func (r *ConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.First(&conv, id).Error
	return &conv, err
}

// FindByPair looks up the unique non-deleted conversation for an unordered
// participant pair. Soft-deleted rows are excluded by gorm automatically.
func (r *ConversationRepository) FindByPair(userA, userB uint) (*models.Conversation, error) {
	low, high := models.NormalizePair(userA, userB)
	var conv models.Conversation
	err := r.db.Where("user1_id = ? AND user2_id = ?", low, high).First(&conv).Error
	return &conv, err
}

func (r *ConversationRepository) UpdateProduct(id uint, productID uint) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", id).
		Update("product_id", productID).Error
}

func (r *ConversationRepository) TouchLastMessage(id uint, at time.Time) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", id).
		Update("last_message_at", at).Error
}

// ConversationListRow is a denormalized row for the conversation list: the
// conversation itself, the peer profile, the last message and the unread count.
type ConversationListRow struct {
	ConversationID uint       `gorm:"column:conversation_id"`
	ProductID      *uint      `gorm:"column:product_id"`
	LastMessageAt  time.Time  `gorm:"column:last_message_at"`

	PeerID        uint   `gorm:"column:peer_id"`
	PeerFirstName string `gorm:"column:peer_first_name"`
	PeerLastName  string `gorm:"column:peer_last_name"`

	LastMessageID       uint       `gorm:"column:last_message_id"`
	LastMessageSenderID uint       `gorm:"column:last_message_sender_id"`
	LastMessageContent  string     `gorm:"column:last_message_content"`
	LastMessageReadAt   *time.Time `gorm:"column:last_message_read_at"`

	UnreadCount int64 `gorm:"column:unread_count"`
}

func (r *ConversationRepository) ListForUser(userID uint, limit int) ([]ConversationListRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	// Single query: latest message per conversation via a window function,
	// unread count per conversation, peer profile joined. No N+1.
	query := strings.TrimSpace(`
WITH ranked AS (
	SELECT
		m.conversation_id,
		m.id AS last_message_id,
		m.sender_id AS last_message_sender_id,
		m.content AS last_message_content,
		m.read_at AS last_message_read_at,
		ROW_NUMBER() OVER (PARTITION BY m.conversation_id ORDER BY m.created_at DESC, m.id DESC) AS rn
	FROM messages m
	WHERE m.deleted_at IS NULL
),
unread AS (
	SELECT m.conversation_id, COUNT(*) AS unread_count
	FROM messages m
	WHERE m.deleted_at IS NULL AND m.read_at IS NULL AND m.sender_id <> ?
	GROUP BY m.conversation_id
)
SELECT
	c.id AS conversation_id,
	c.product_id,
	c.last_message_at,
	CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END AS peer_id,
	u.first_name AS peer_first_name,
	u.last_name AS peer_last_name,
	r.last_message_id,
	r.last_message_sender_id,
	r.last_message_content,
	r.last_message_read_at,
	COALESCE(un.unread_count, 0) AS unread_count
FROM conversations c
JOIN userinfo u
	ON u.id = CASE WHEN c.user1_id = ? THEN c.user2_id ELSE c.user1_id END
	AND u.deleted_at IS NULL
LEFT JOIN ranked r ON r.conversation_id = c.id AND r.rn = 1
LEFT JOIN unread un ON un.conversation_id = c.id
WHERE c.deleted_at IS NULL AND (c.user1_id = ? OR c.user2_id = ?)
ORDER BY c.last_message_at DESC
LIMIT ?`)

	var rows []ConversationListRow
	err := r.db.Raw(query, userID, userID, userID, userID, userID, limit).Scan(&rows).Error
	return rows, err
}
