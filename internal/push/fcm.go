package push

import (
	"context"
	"errors"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/agrilink/agrichat-backend/internal/models"
	"google.golang.org/api/option"
)

const defaultAndroidChannel = "chat_messages"

type Config struct {
	CredentialsFile string
	ProjectID       string
}

func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		CredentialsFile: strings.TrimSpace(os.Getenv("FCM_CREDENTIALS_FILE")),
		ProjectID:       strings.TrimSpace(os.Getenv("FCM_PROJECT_ID")),
	}
	if cfg.CredentialsFile == "" {
		return Config{}, errors.New("missing required FCM env: FCM_CREDENTIALS_FILE")
	}
	return cfg, nil
}

// FCMGateway delivers one push per device token through Firebase Cloud
// Messaging.
type FCMGateway struct {
	client *messaging.Client
}

func NewFCMGateway(ctx context.Context, cfg Config) (*FCMGateway, error) {
	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: cfg.ProjectID},
		option.WithCredentialsFile(cfg.CredentialsFile),
	)
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FCMGateway{client: client}, nil
}

// Send pushes to a single token with presentation matched to the device:
// sound and channel on mobile, icon/badge plus a click-through link on web.
func (g *FCMGateway) Send(ctx context.Context, token string, deviceType models.DeviceType, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	switch deviceType {
	case models.DeviceWeb:
		link := data["url"]
		if link == "" {
			link = "/"
		}
		msg.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Icon:  "/icons/notification-192.png",
				Badge: "/icons/badge-72.png",
			},
			FCMOptions: &messaging.WebpushFCMOptions{Link: link},
		}
	case models.DeviceIOS:
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	default:
		msg.Android = &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: defaultAndroidChannel,
			},
		}
	}

	_, err := g.client.Send(ctx, msg)
	return err
}
