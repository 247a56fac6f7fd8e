package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService delivers route notifications to user devices through Firebase
// Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService reads service-account credentials from a file
func NewFCMService(ctx context.Context, credentialsFile string) (*FCMService, error) {
	return newFCMService(ctx, option.WithCredentialsFile(credentialsFile))
}

// NewFCMServiceFromBase64 takes base64-encoded service-account JSON, for
// hosts where mounting a credentials file is awkward
func NewFCMServiceFromBase64(ctx context.Context, credentialsBase64 string) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode firebase credentials: %w", err)
	}
	return newFCMService(ctx, option.WithCredentialsJSON(credentialsJSON))
}

func newFCMService(ctx context.Context, opt option.ClientOption) (*FCMService, error) {
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// routeNotification wraps a title/body pair with the delivery options every
// route alert uses: high priority on Android, sound and background wake-up
// on iOS.
func routeNotification(tokens []string, title, body string, data map[string]string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Android:      &messaging.AndroidConfig{Priority: "high"},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: true, Sound: "default"},
			},
		},
	}
}

// SendMulticast pushes one notification to every token. It returns the
// tokens FCM reported as unregistered so the caller can forget them.
func (s *FCMService) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	response, err := s.client.SendEachForMulticast(ctx, routeNotification(tokens, title, body, data))
	if err != nil {
		return nil, fmt.Errorf("failed to push to %d devices: %w", len(tokens), err)
	}

	var unregistered []string
	for i, r := range response.Responses {
		if r.Success {
			continue
		}
		if messaging.IsUnregistered(r.Error) {
			unregistered = append(unregistered, tokens[i])
			continue
		}
		log.Printf("⚠️  [FCM] Delivery failed for device %d/%d: %v", i+1, len(tokens), r.Error)
	}

	log.Printf("📲 [FCM] %q: %d delivered, %d failed", title, response.SuccessCount, response.FailureCount)
	return unregistered, nil
}
