// Package view holds the client-side state machines behind the registration
// form and the school listing. They talk to the API through SchoolAPI and
// render as plain text.
package view

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stemsi/school-directory/internal/model"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 3 * time.Second

// SchoolAPI is the subset of the API client the views use.
type SchoolAPI interface {
	AddSchool(ctx context.Context, fields model.SchoolFields, imageName string, image io.Reader, idempotencyKey string) (*model.CreateSchoolResponse, error)
	ListSchools(ctx context.Context) ([]model.School, error)
	DeleteSchool(ctx context.Context, id int64) error
	ImageURL(path string) string
}

// Notification is a transient success or failure message.
type Notification struct {
	Message string
	Success bool
}

// Notifier shows one notification at a time and hides it after its TTL.
// A new notification replaces the current one and restarts the timer.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Notification
	timer   *time.Timer
	seq     uint64
}

// NewNotifier creates a Notifier whose notifications last ttl.
func NewNotifier(ttl time.Duration) *Notifier {
	return &Notifier{ttl: ttl}
}

// Show displays message.
func (n *Notifier) Show(message string, success bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = &Notification{Message: message, Success: success}
	n.timer = time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// A later Show owns the slot.
		if n.seq == seq {
			n.current = nil
		}
	})
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Dismiss hides the current notification early.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	n.current = nil
}
