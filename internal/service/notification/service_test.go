package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	user.UserRepository
	users map[string]user.User
}

func (s stubUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent map[string]email.RequestDecisionData
}

func (m *recordingMailer) SendRequestDecision(to string, data email.RequestDecisionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[to] = data
	return nil
}

func TestNotify_PublishesAndEmails(t *testing.T) {
	addr := "tanaka@example.com"
	users := stubUsers{users: map[string]user.User{
		"u1": {ID: "u1", Username: "tanaka", Email: &addr},
	}}
	mailer := &recordingMailer{sent: map[string]email.RequestDecisionData{}}
	hub := sse.NewHub()
	svc := NewNotificationService(users, hub, mailer, Config{WorkerCount: 1})

	events, cleanup := svc.Subscribe("u1")
	defer cleanup()

	svc.Notify(context.Background(), notification.Notification{
		RecipientID: "u1",
		Type:        notification.TypeRequestApproved,
		Title:       "Overtime request approved",
		Data:        map[string]interface{}{"kind": "overtime", "outcome": "approved"},
	})

	select {
	case e := <-events:
		assert.Equal(t, "request_approved", e.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	svc.Stop()

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.Contains(t, mailer.sent, addr)
	assert.Equal(t, "overtime", mailer.sent[addr].Kind)
	assert.Equal(t, "tanaka", mailer.sent[addr].Username)
}

func TestNotify_AfterStopIsDropped(t *testing.T) {
	svc := NewNotificationService(stubUsers{}, sse.NewHub(), nil, Config{WorkerCount: 1})
	svc.Stop()
	svc.Stop()

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), notification.Notification{RecipientID: "u1"})
	})
}
