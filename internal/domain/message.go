package domain

import "time"

// MessageStatus is the delivery state machine a Message moves through.
type MessageStatus string

const (
	StatusPending    MessageStatus = "PENDING"
	StatusProcessing MessageStatus = "PROCESSING"
	StatusDelivered  MessageStatus = "DELIVERED"
	StatusFailed     MessageStatus = "FAILED"
	StatusCancelled  MessageStatus = "CANCELLED"
)

// Message is one delivery unit bound to one WebhookConfig.
type Message struct {
	ID              string
	WebhookConfigID string
	Payload         []byte // byte-exact bytes that were signed and will be sent
	TargetURL       string
	Signature       string
	Headers         map[string]string
	Status          MessageStatus
	RetryCount      int
	NextRetry       *time.Time
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminal reports whether no further transitions can occur.
func (m *Message) IsTerminal() bool {
	switch m.Status {
	case StatusDelivered, StatusCancelled:
		return true
	case StatusFailed:
		return m.NextRetry == nil
	default:
		return false
	}
}

// Cancellable reports whether the message is still eligible to be
// cancelled: only PENDING/FAILED messages are.
func (m *Message) Cancellable() bool {
	return m.Status == StatusPending || m.Status == StatusFailed
}
