package notification

import (
	"context"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/sse"
)

// Notifier accepts notifications for asynchronous delivery. It never fails
// the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Service defines the notification service interface
type Service interface {
	Notifier

	// Subscribe registers an SSE stream for the user.
	Subscribe(userID string) (<-chan sse.Event, func())

	// Stop drains the queue and stops the workers.
	Stop()
}
