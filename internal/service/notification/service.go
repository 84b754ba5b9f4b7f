package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 1000
	SendTimeout time.Duration // default: 30 seconds
}

type service struct {
	users  user.UserRepository
	hub    *sse.Hub
	mailer email.EmailService
	config Config

	queue    chan notification.Notification
	wg       sync.WaitGroup
	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

// NewNotificationService starts the delivery workers. mailer may be nil.
func NewNotificationService(users user.UserRepository, hub *sse.Hub, mailer email.EmailService, cfg Config) notification.Service {
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	s := &service{
		users:  users,
		hub:    hub,
		mailer: mailer,
		config: cfg,
		queue:  make(chan notification.Notification, cfg.QueueSize),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()
	for n := range s.queue {
		s.deliver(id, n)
	}
}

func (s *service) deliver(workerID int, n notification.Notification) {
	s.hub.Publish(sse.Event{
		UserID: n.RecipientID,
		Name:   string(n.Type),
		Data:   n,
	})

	if s.mailer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.SendTimeout)
	defer cancel()

	recipient, err := s.users.GetByID(ctx, n.RecipientID)
	if err != nil {
		slog.Warn("Notification recipient lookup failed", "worker", workerID, "recipient_id", n.RecipientID, "error", err)
		return
	}
	if recipient.Email == nil || *recipient.Email == "" {
		return
	}

	data := email.RequestDecisionData{
		Username: recipient.Username,
		Title:    n.Title,
		Message:  n.Message,
	}
	if v, ok := n.Data["kind"].(string); ok {
		data.Kind = v
	}
	if v, ok := n.Data["outcome"].(string); ok {
		data.Outcome = v
	}
	if v, ok := n.Data["period"].(string); ok {
		data.Period = v
	}

	if err := s.mailer.SendRequestDecision(*recipient.Email, data); err != nil {
		slog.Error("Failed to email notification", "worker", workerID, "recipient_id", n.RecipientID, "type", n.Type, "error", err)
	}
}

// Notify queues n. When the queue is full the notification is dropped and
// logged; the caller's operation has already committed.
func (s *service) Notify(ctx context.Context, n notification.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		slog.Warn("Notification dropped after shutdown", "recipient_id", n.RecipientID, "type", n.Type)
		return
	}

	select {
	case s.queue <- n:
	case <-ctx.Done():
		slog.Warn("Notification dropped", "recipient_id", n.RecipientID, "type", n.Type, "error", ctx.Err())
	default:
		slog.Warn("Notification queue full, dropping", "recipient_id", n.RecipientID, "type", n.Type)
	}
}

func (s *service) Subscribe(userID string) (<-chan sse.Event, func()) {
	return s.hub.Subscribe(userID)
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		close(s.queue)
		s.mu.Unlock()

		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
