package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/agrilink/agrichat-backend/internal/models"
	"github.com/agrilink/agrichat-backend/internal/repository"
)

// Notification is one logical push, fanned out across a user's device tokens.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// DispatchResult aggregates the per-token outcomes of one fan-out.
type DispatchResult struct {
	Succeeded int
	Failed    int
}

// PushGateway is the delivery transport contract. Implementations report
// per-token success or failure; they never see other tokens of the same user.
type PushGateway interface {
	Send(ctx context.Context, token string, deviceType models.DeviceType, title, body string, data map[string]string) error
}

type NotificationService struct {
	tokenRepo repository.DeviceTokenRepositoryInterface
	gateway   PushGateway
}

func NewNotificationService(tokenRepo repository.DeviceTokenRepositoryInterface, gateway PushGateway) *NotificationService {
	return &NotificationService{tokenRepo: tokenRepo, gateway: gateway}
}

// DispatchToUser resolves every registered device token for the user and
// sends one push per token in parallel. Each send is independent: a failed or
// expired token never blocks delivery to the user's other devices. A user
// with no tokens is a "no targets" result, not an error.
func (s *NotificationService) DispatchToUser(userID uint, n Notification) (DispatchResult, error) {
	tokens, err := s.tokenRepo.FindByUser(userID)
	if err != nil {
		return DispatchResult{}, err
	}
	if len(tokens) == 0 {
		return DispatchResult{}, nil
	}
	if s.gateway == nil {
		log.Printf("push gateway not configured, dropping notification for user %d", userID)
		return DispatchResult{Failed: len(tokens)}, nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result DispatchResult
	)
	ctx := context.Background()

	for _, t := range tokens {
		wg.Add(1)
		go func(t models.DeviceToken) {
			defer wg.Done()
			err := s.gateway.Send(ctx, t.Token, t.DeviceType, n.Title, n.Body, n.Data)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				log.Printf("push send failed user_id=%d device_type=%s: %v", userID, t.DeviceType, err)
				return
			}
			result.Succeeded++
		}(t)
	}
	wg.Wait()

	return result, nil
}

// CoerceData flattens arbitrary payload values into the string map the push
// transport requires.
func CoerceData(in map[string]interface{}) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
