package service

import (
	"encoding/json"
	"log"
	"time"

	"github.com/agrilink/agrichat-backend/internal/models"
	"github.com/agrilink/agrichat-backend/internal/repository"
)

// DefaultDailyAlertCap limits proactive alerts per user, per category, per
// calendar day.
const DefaultDailyAlertCap = 3

// AlertService gates and delivers rate-limited proactive alerts (weather
// warnings and similar categories). The counter is derived from the send log;
// there is no stored ceiling.
type AlertService struct {
	alertLog   repository.AlertLogRepositoryInterface
	dispatcher NotificationDispatcher
	cap        int

	// now is swappable in tests for day-boundary cases.
	now func() time.Time
}

func NewAlertService(alertLog repository.AlertLogRepositoryInterface, dispatcher NotificationDispatcher) *AlertService {
	return &AlertService{
		alertLog:   alertLog,
		dispatcher: dispatcher,
		cap:        DefaultDailyAlertCap,
		now:        time.Now,
	}
}

// CanSend reports whether the user is still under today's cap for the
// category. A store read failure defaults to allowed: a missed weather alert
// is worse than an occasional over-send.
func (s *AlertService) CanSend(userID uint, category string) bool {
	count, err := s.alertLog.CountSince(userID, category, dayStart(s.now()))
	if err != nil {
		log.Printf("alert gate read failed user_id=%d category=%s, failing open: %v", userID, category, err)
		return true
	}
	return count < int64(s.cap)
}

// RecordSent appends a send-log row. Bookkeeping failure must not roll back
// an already-delivered alert, so errors are logged only.
func (s *AlertService) RecordSent(userID uint, category string, payload map[string]interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to encode alert payload user_id=%d: %v", userID, err)
		raw = []byte("{}")
	}
	entry := &models.WeatherAlertLog{
		UserID:      userID,
		AlertType:   category,
		WeatherData: string(raw),
		SentAt:      s.now(),
	}
	if err := s.alertLog.Create(entry); err != nil {
		log.Printf("failed to record alert send user_id=%d category=%s: %v", userID, category, err)
	}
}

// SendWeatherAlert runs the full gated flow: check the cap, dispatch to the
// user's devices, record the send. A denied gate returns ErrAlertLimitReached
// without attempting delivery.
func (s *AlertService) SendWeatherAlert(userID uint, category string, payload map[string]interface{}) (DispatchResult, error) {
	if userID == 0 {
		return DispatchResult{}, &ValidationError{Field: "userId"}
	}
	if category == "" {
		return DispatchResult{}, &ValidationError{Field: "alertType"}
	}

	if !s.CanSend(userID, category) {
		return DispatchResult{}, ErrAlertLimitReached
	}

	title := "Weather alert"
	body := category
	if msg, ok := payload["message"].(string); ok && msg != "" {
		body = TruncateBody(msg)
	}

	data := CoerceData(payload)
	if data == nil {
		data = make(map[string]string, 2)
	}
	data["type"] = "weather_alert"
	data["alertType"] = category

	result, err := s.dispatcher.DispatchToUser(userID, Notification{
		Title: title,
		Body:  body,
		Data:  data,
	})
	if err != nil {
		return result, err
	}

	if result.Succeeded > 0 {
		s.RecordSent(userID, category, payload)
	}
	return result, nil
}

// dayStart returns midnight of t's calendar day in the process's local zone.
func dayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
