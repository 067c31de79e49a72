package realtime

import (
	"go.uber.org/zap"
)

// Notifier fans a state update out to every affected user that currently
// has a live connection. Delivery is best-effort and at-most-once: offline
// users are skipped silently, and a failed push to one recipient never
// blocks the rest of the batch. Callers build the payload from a fresh
// post-mutation read of the entity.
type Notifier struct {
	registry Registry
	log      *zap.Logger
}

func NewNotifier(registry Registry, log *zap.Logger) *Notifier {
	return &Notifier{registry: registry, log: log}
}

func (n *Notifier) Notify(userIDs []string, event string, data interface{}) {
	for _, userID := range userIDs {
		conn, ok := n.registry.Lookup(userID)
		if !ok {
			continue
		}
		if err := conn.Push(event, data); err != nil {
			n.log.Debug("push failed",
				zap.String("user_id", userID),
				zap.String("event", event),
				zap.Error(err))
		}
	}
}

// NotifyExcept is Notify minus one recipient, typically the actor who
// already received the state in their command reply.
func (n *Notifier) NotifyExcept(userIDs []string, exceptUserID, event string, data interface{}) {
	targets := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != exceptUserID {
			targets = append(targets, id)
		}
	}
	n.Notify(targets, event, data)
}
