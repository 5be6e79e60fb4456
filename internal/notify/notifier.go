// Package notify is the transient notification bus the UI polls for toasts.
// It deliberately exposes plain publish/snapshot primitives instead of
// assuming any reactive framework on the consumer side.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Notification kinds.
const (
	KindSuccess = "success"
	KindWarning = "warning"
	KindError   = "error"
)

// Notification is one user-visible message. Offline marks mutations that
// were saved locally and still await synchronization, so the UI can render
// them distinctly from confirmed ones.
type Notification struct {
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	Offline  bool      `json:"offline"`
	CriadoEm time.Time `json:"criado_em"`
}

const ringSize = 100

// Notifier keeps the most recent notifications in a bounded ring.
type Notifier struct {
	mu      sync.Mutex
	entries []Notification
}

func NewNotifier() *Notifier { return &Notifier{} }

func (n *Notifier) publish(kind, msg string, offline bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, Notification{
		Kind:     kind,
		Message:  msg,
		Offline:  offline,
		CriadoEm: time.Now().UTC(),
	})
	if len(n.entries) > ringSize {
		n.entries = n.entries[len(n.entries)-ringSize:]
	}
	log.Info().Str("kind", kind).Bool("offline", offline).Msg(msg)
}

// Success reports a confirmed (online) mutation.
func (n *Notifier) Success(msg string) { n.publish(KindSuccess, msg, false) }

// SuccessOffline reports a mutation saved locally, pending sync.
func (n *Notifier) SuccessOffline(msg string) { n.publish(KindSuccess, msg, true) }

// Warning reports a condition the operator should look at.
func (n *Notifier) Warning(msg string) { n.publish(KindWarning, msg, false) }

// Error reports a failed operation.
func (n *Notifier) Error(msg string) { n.publish(KindError, msg, false) }

// Snapshot returns a copy of the retained notifications, oldest first.
func (n *Notifier) Snapshot() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.entries))
	copy(out, n.entries)
	return out
}
