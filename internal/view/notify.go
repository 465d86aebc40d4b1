package view

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification: validation problems are warnings, store
// failures are errors, everything else is informational.
type Kind string

const (
	KindInfo  Kind = "info"
	KindWarn  Kind = "warn"
	KindError Kind = "error"
)

// NotificationTTL is how long a notification stays visible before the UI
// dismisses it.
const NotificationTTL = 4 * time.Second

// maxNotifications bounds the queue; pushing beyond it evicts the oldest.
const maxNotifications = 5

type Notification struct {
	ID      string
	Message string
	Kind    Kind
	Expiry  time.Time
}

type queue struct {
	items []Notification
}

// Notify appends a notification and returns its id for later dismissal.
func (vm *ViewModel) Notify(kind Kind, message string) string {
	n := Notification{
		ID:      uuid.NewString(),
		Message: message,
		Kind:    kind,
		Expiry:  time.Now().Add(NotificationTTL),
	}
	vm.notes.items = append(vm.notes.items, n)
	if len(vm.notes.items) > maxNotifications {
		vm.notes.items = vm.notes.items[len(vm.notes.items)-maxNotifications:]
	}
	return n.ID
}

// Dismiss removes the notification with the given id. Dismissing an id
// that is already gone is a no-op, so timer-driven removal can race with
// eviction safely.
func (vm *ViewModel) Dismiss(id string) {
	for i, n := range vm.notes.items {
		if n.ID == id {
			vm.notes.items = append(vm.notes.items[:i], vm.notes.items[i+1:]...)
			return
		}
	}
}

// Notifications returns the queue in arrival order.
func (vm *ViewModel) Notifications() []Notification {
	return vm.notes.items
}
