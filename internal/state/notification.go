package state

import (
	"sync"
	"time"

	"NiftyDash/internal/domain/models"

	"github.com/google/uuid"
)

// NotificationChannel holds exactly one user-facing message. Post replaces
// it; there is no queue and no history.
type NotificationChannel struct {
	mu      sync.RWMutex
	current models.Notification
	now     func() time.Time
}

func NewNotificationChannel() *NotificationChannel {
	return &NotificationChannel{
		current: models.Notification{Severity: models.SeverityNone},
		now:     time.Now,
	}
}

// Post overwrites the current notification and returns it.
func (c *NotificationChannel) Post(sev models.Severity, message string, action models.OperationKind) models.Notification {
	n := models.Notification{
		ID:       uuid.NewString(),
		Severity: sev,
		Message:  message,
		Action:   action,
		At:       c.now(),
	}
	c.mu.Lock()
	c.current = n
	c.mu.Unlock()
	return n
}

func (c *NotificationChannel) Current() models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}
