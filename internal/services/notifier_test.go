package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"binroute-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type broadcastCall struct {
	userID string
	event  RouteEvent
}

type fakeHub struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (h *fakeHub) BroadcastToUser(userID string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, broadcastCall{userID: userID, event: data.(RouteEvent)})
}

type pushCall struct {
	tokens []string
	title  string
	data   map[string]string
}

type fakePush struct {
	calls        []pushCall
	unregistered []string
	err          error
}

func (p *fakePush) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	p.calls = append(p.calls, pushCall{tokens: tokens, title: title, data: data})
	return p.unregistered, p.err
}

type fakeTokens struct {
	tokens  map[string][]models.FCMToken
	deleted []string
	err     error
}

func (f *fakeTokens) ListFCMTokens(ctx context.Context, userID string) ([]models.FCMToken, error) {
	return f.tokens[userID], f.err
}

func (f *fakeTokens) DeleteFCMTokens(ctx context.Context, tokens []string) error {
	f.deleted = append(f.deleted, tokens...)
	return nil
}

func samplePlan() *models.RoutePlan {
	return &models.RoutePlan{
		ID:              "plan-1",
		UserID:          "user-1",
		Stops:           []models.Stop{{BinID: "A"}, {BinID: "B"}},
		TotalDistanceKm: 12.5,
		Status:          models.RoutePlanStatusPlanned,
	}
}

func TestNotifierRoutePlanCreated(t *testing.T) {
	hub := &fakeHub{}
	push := &fakePush{}
	tokens := &fakeTokens{tokens: map[string][]models.FCMToken{
		"user-1": {{Token: "tok-a"}, {Token: "tok-b"}},
	}}
	n := NewNotifier(hub, push, tokens)

	plan := samplePlan()
	n.RoutePlanCreated(context.Background(), plan)

	require.Len(t, hub.calls, 1)
	assert.Equal(t, "user-1", hub.calls[0].userID)
	assert.Equal(t, EventRoutePlanCreated, hub.calls[0].event.Type)
	assert.Same(t, plan, hub.calls[0].event.Data)

	require.Len(t, push.calls, 1)
	assert.Equal(t, []string{"tok-a", "tok-b"}, push.calls[0].tokens)
	assert.Equal(t, "New Route Planned", push.calls[0].title)
	assert.Equal(t, "plan-1", push.calls[0].data["route_plan_id"])
	assert.Equal(t, "2", push.calls[0].data["total_stops"])
	assert.Empty(t, tokens.deleted)
}

func TestNotifierPrunesUnregisteredTokens(t *testing.T) {
	push := &fakePush{unregistered: []string{"tok-old"}}
	tokens := &fakeTokens{tokens: map[string][]models.FCMToken{
		"user-1": {{Token: "tok-new"}, {Token: "tok-old"}},
	}}
	n := NewNotifier(nil, push, tokens)

	n.RoutePlanCompleted(context.Background(), samplePlan())

	require.Len(t, push.calls, 1)
	assert.Equal(t, "Route Completed", push.calls[0].title)
	assert.Equal(t, []string{"tok-old"}, tokens.deleted)
}

func TestNotifierStopServicedIsWebsocketOnly(t *testing.T) {
	hub := &fakeHub{}
	push := &fakePush{}
	n := NewNotifier(hub, push, &fakeTokens{tokens: map[string][]models.FCMToken{"user-1": {{Token: "t"}}}})

	plan := samplePlan()
	at := int64(1700000000)
	plan.Stops[0].ServicedAt = &at

	n.StopServiced(context.Background(), plan, "A")

	require.Len(t, hub.calls, 1)
	assert.Equal(t, EventStopServiced, hub.calls[0].event.Type)
	payload := hub.calls[0].event.Data.(map[string]interface{})
	assert.Equal(t, "A", payload["bin_id"])
	assert.Equal(t, 1, payload["serviced_stops"])
	assert.Equal(t, 2, payload["total_stops"])
	assert.Empty(t, push.calls)
}

func TestNotifierSkipsPushWithoutTokens(t *testing.T) {
	push := &fakePush{}
	n := NewNotifier(nil, push, &fakeTokens{})

	n.RoutePlanCompleted(context.Background(), samplePlan())

	assert.Empty(t, push.calls)
}

func TestNotifierToleratesFailures(t *testing.T) {
	hub := &fakeHub{}
	push := &fakePush{err: errors.New("fcm unavailable")}
	n := NewNotifier(hub, push, &fakeTokens{tokens: map[string][]models.FCMToken{"user-1": {{Token: "t"}}}})

	assert.NotPanics(t, func() {
		n.RoutePlanCompleted(context.Background(), samplePlan())
	})
	assert.Len(t, hub.calls, 1)
	assert.Len(t, push.calls, 1)
	assert.Empty(t, n.tokens.(*fakeTokens).deleted)

	failingTokens := NewNotifier(nil, push, &fakeTokens{err: errors.New("db down")})
	failingTokens.RoutePlanCreated(context.Background(), samplePlan())
	assert.Len(t, push.calls, 1)
}

func TestNotifierWithNothingConfigured(t *testing.T) {
	n := NewNotifier(nil, nil, nil)
	assert.NotPanics(t, func() {
		n.RoutePlanCreated(context.Background(), samplePlan())
		n.StopServiced(context.Background(), samplePlan(), "A")
		n.RoutePlanCompleted(context.Background(), samplePlan())
	})
}
