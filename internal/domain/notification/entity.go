package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeRequestApproved  NotificationType = "request_approved"
	TypeRequestRejected  NotificationType = "request_rejected"
	TypeRequestCancelled NotificationType = "request_cancelled"
	TypeScheduleDecided  NotificationType = "schedule_month_decided"
)

// Notification is delivered to one recipient over SSE and, when possible,
// by email.
type Notification struct {
	RecipientID string                 `json:"recipient_id"`
	Type        NotificationType       `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
