package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"binroute-backend/internal/models"
)

// Websocket event types pushed to the plan owner
const (
	EventRoutePlanCreated   = "route_plan_created"
	EventStopServiced       = "stop_serviced"
	EventRoutePlanCompleted = "route_plan_completed"
)

// Broadcaster delivers a JSON-encodable payload to one connected user
type Broadcaster interface {
	BroadcastToUser(userID string, data interface{})
}

// PushSender sends a push notification to device tokens and reports the
// tokens that are no longer registered
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error)
}

// TokenStore lists and prunes a user's registered push tokens
type TokenStore interface {
	ListFCMTokens(ctx context.Context, userID string) ([]models.FCMToken, error)
	DeleteFCMTokens(ctx context.Context, tokens []string) error
}

// Notifier fans route events out to websocket clients and, when configured,
// to FCM. Delivery failures are logged and never fail the operation.
type Notifier struct {
	hub    Broadcaster
	push   PushSender
	tokens TokenStore
}

// NewNotifier creates a Notifier. hub, push and tokens may each be nil.
func NewNotifier(hub Broadcaster, push PushSender, tokens TokenStore) *Notifier {
	return &Notifier{hub: hub, push: push, tokens: tokens}
}

// RouteEvent is the websocket payload
type RouteEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (n *Notifier) RoutePlanCreated(ctx context.Context, plan *models.RoutePlan) {
	n.broadcast(plan.UserID, EventRoutePlanCreated, plan)
	n.sendPush(ctx, plan.UserID,
		"New Route Planned",
		fmt.Sprintf("%d bins to collect, %.1f km round trip.", len(plan.Stops), plan.TotalDistanceKm),
		map[string]string{
			"type":          EventRoutePlanCreated,
			"route_plan_id": plan.ID,
			"total_stops":   strconv.Itoa(len(plan.Stops)),
		},
	)
}

func (n *Notifier) StopServiced(ctx context.Context, plan *models.RoutePlan, binID string) {
	n.broadcast(plan.UserID, EventStopServiced, map[string]interface{}{
		"route_plan_id":  plan.ID,
		"bin_id":         binID,
		"serviced_stops": plan.ServicedCount(),
		"total_stops":    len(plan.Stops),
		"status":         plan.Status,
	})
}

func (n *Notifier) RoutePlanCompleted(ctx context.Context, plan *models.RoutePlan) {
	n.broadcast(plan.UserID, EventRoutePlanCompleted, plan)
	n.sendPush(ctx, plan.UserID,
		"Route Completed",
		fmt.Sprintf("All %d bins on your route have been collected.", len(plan.Stops)),
		map[string]string{
			"type":          EventRoutePlanCompleted,
			"route_plan_id": plan.ID,
		},
	)
}

func (n *Notifier) broadcast(userID, eventType string, data interface{}) {
	if n.hub == nil {
		return
	}
	n.hub.BroadcastToUser(userID, RouteEvent{Type: eventType, Data: data})
}

func (n *Notifier) sendPush(ctx context.Context, userID, title, body string, data map[string]string) {
	if n.push == nil || n.tokens == nil {
		return
	}

	tokens, err := n.tokens.ListFCMTokens(ctx, userID)
	if err != nil {
		log.Printf("⚠️  Failed to load FCM tokens for %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	values := make([]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.Token
	}

	unregistered, err := n.push.SendMulticast(ctx, values, title, body, data)
	if err != nil {
		log.Printf("⚠️  Failed to send push to %s: %v", userID, err)
		return
	}
	if len(unregistered) == 0 {
		return
	}

	if err := n.tokens.DeleteFCMTokens(ctx, unregistered); err != nil {
		log.Printf("⚠️  Failed to prune %d stale FCM tokens: %v", len(unregistered), err)
		return
	}
	log.Printf("🧹 Pruned %d stale FCM tokens for %s", len(unregistered), userID)
}
