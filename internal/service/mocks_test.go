package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/agrilink/agrichat-backend/internal/models"
	"github.com/agrilink/agrichat-backend/internal/repository"
	"gorm.io/gorm"
)

// MockConversationRepository is an in-memory implementation for tests
type MockConversationRepository struct {
	conversations map[uint]*models.Conversation
	nextID        uint
	failFind      bool
}

func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		conversations: make(map[uint]*models.Conversation),
		nextID:        1,
	}
}

func (m *MockConversationRepository) Create(conv *models.Conversation) error {
	conv.User1ID, conv.User2ID = models.NormalizePair(conv.User1ID, conv.User2ID)
	if conv.ID == 0 {
		conv.ID = m.nextID
		m.nextID++
	}
	m.conversations[conv.ID] = conv
	return nil
}

func (m *MockConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	if m.failFind {
		return nil, errors.New("store unavailable")
	}
	if c, ok := m.conversations[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) FindByPair(userA, userB uint) (*models.Conversation, error) {
	low, high := models.NormalizePair(userA, userB)
	for _, c := range m.conversations {
		if c.User1ID == low && c.User2ID == high {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) UpdateProduct(id uint, productID uint) error {
	c, ok := m.conversations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ProductID = &productID
	return nil
}

func (m *MockConversationRepository) TouchLastMessage(id uint, at time.Time) error {
	if c, ok := m.conversations[id]; ok {
		c.LastMessageAt = at
	}
	return nil
}

func (m *MockConversationRepository) ListForUser(userID uint, limit int) ([]repository.ConversationListRow, error) {
	return []repository.ConversationListRow{}, nil
}

// MockMessageRepository is an in-memory implementation for tests
type MockMessageRepository struct {
	messages map[uint]*models.Message
	nextID   uint
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) FindByConversation(conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var result []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			continue
		}
		if cursor > 0 && msg.ID >= cursor {
			continue
		}
		result = append(result, *msg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockMessageRepository) MarkConversationRead(conversationID, readerID uint, at time.Time) ([]repository.ReadReceiptRow, error) {
	var rows []repository.ReadReceiptRow
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.SenderID != readerID && msg.ReadAt == nil {
			t := at
			msg.ReadAt = &t
			rows = append(rows, repository.ReadReceiptRow{MessageID: msg.ID, SenderID: msg.SenderID})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MessageID < rows[j].MessageID })
	return rows, nil
}

func (m *MockMessageRepository) CountUnread(conversationID, readerID uint) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.SenderID != readerID && msg.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

// MockUserRepository is an in-memory implementation for tests
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByPhone(phone string) (*models.User, error) {
	for _, u := range m.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// MockProductRepository is an in-memory implementation for tests
type MockProductRepository struct {
	products map[uint]*models.Product
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[uint]*models.Product)}
}

func (m *MockProductRepository) Add(p *models.Product) {
	m.products[p.ID] = p
}

func (m *MockProductRepository) FindByID(id uint) (*models.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// MockDeviceTokenRepository is an in-memory implementation for tests
type MockDeviceTokenRepository struct {
	tokens   []models.DeviceToken
	failFind bool
}

func NewMockDeviceTokenRepository() *MockDeviceTokenRepository {
	return &MockDeviceTokenRepository{}
}

func (m *MockDeviceTokenRepository) Upsert(token *models.DeviceToken) error {
	for i := range m.tokens {
		if m.tokens[i].Token == token.Token {
			m.tokens[i] = *token
			return nil
		}
	}
	token.ID = uint(len(m.tokens) + 1)
	m.tokens = append(m.tokens, *token)
	return nil
}

func (m *MockDeviceTokenRepository) DeleteByToken(userID uint, token string) error {
	out := m.tokens[:0]
	for _, t := range m.tokens {
		if t.UserID != userID || t.Token != token {
			out = append(out, t)
		}
	}
	m.tokens = out
	return nil
}

func (m *MockDeviceTokenRepository) FindByUser(userID uint) ([]models.DeviceToken, error) {
	if m.failFind {
		return nil, errors.New("store unavailable")
	}
	var result []models.DeviceToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

// MockAlertLogRepository is an in-memory implementation for tests
type MockAlertLogRepository struct {
	entries    []models.WeatherAlertLog
	failCount  bool
	failCreate bool
}

func NewMockAlertLogRepository() *MockAlertLogRepository {
	return &MockAlertLogRepository{}
}

func (m *MockAlertLogRepository) Create(entry *models.WeatherAlertLog) error {
	if m.failCreate {
		return errors.New("store unavailable")
	}
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MockAlertLogRepository) CountSince(userID uint, alertType string, since time.Time) (int64, error) {
	if m.failCount {
		return 0, errors.New("store unavailable")
	}
	var count int64
	for _, e := range m.entries {
		if e.UserID == userID && e.AlertType == alertType && !e.SentAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// FakeBroadcaster records live-delivery calls instead of writing to sockets
type FakeBroadcaster struct {
	RoomEvents   []FakeEvent
	DirectEvents []FakeEvent
	Deliveries   []FakeEvent
}

type FakeEvent struct {
	ConversationID uint
	UserID         uint
	Event          string
	Payload        interface{}
}

func (f *FakeBroadcaster) BroadcastToRoom(conversationID uint, event string, payload interface{}) {
	f.RoomEvents = append(f.RoomEvents, FakeEvent{ConversationID: conversationID, Event: event, Payload: payload})
}

func (f *FakeBroadcaster) DeliverToConversation(conversationID uint, userID uint, event string, payload interface{}) int {
	f.Deliveries = append(f.Deliveries, FakeEvent{ConversationID: conversationID, UserID: userID, Event: event, Payload: payload})
	return 1
}

func (f *FakeBroadcaster) SendToUser(userID uint, event string, payload interface{}) int {
	f.DirectEvents = append(f.DirectEvents, FakeEvent{UserID: userID, Event: event, Payload: payload})
	return 1
}

// FakePresence answers IsOnline from a fixed set
type FakePresence struct {
	Online map[uint]bool
}

func (f *FakePresence) IsOnline(userID uint) bool {
	return f.Online[userID]
}

// FakeActivity answers Snapshot from fixed entries
type FakeActivity struct {
	Entries map[uint]ActivitySnapshot
}

func (f *FakeActivity) Snapshot(userID uint) ActivitySnapshot {
	return f.Entries[userID]
}

// FakeDispatcher records dispatch calls
type FakeDispatcher struct {
	Calls  []FakeDispatch
	Result DispatchResult
	Err    error
}

type FakeDispatch struct {
	UserID       uint
	Notification Notification
}

func (f *FakeDispatcher) DispatchToUser(userID uint, n Notification) (DispatchResult, error) {
	f.Calls = append(f.Calls, FakeDispatch{UserID: userID, Notification: n})
	return f.Result, f.Err
}

// FakeGateway is a PushGateway failing for a configured set of tokens
type FakeGateway struct {
	mu        sync.Mutex
	FailFor   map[string]bool
	SentCount int
}

func (f *FakeGateway) Send(ctx context.Context, token string, deviceType models.DeviceType, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SentCount++
	if f.FailFor[token] {
		return errors.New("registration-token-not-registered")
	}
	return nil
}
