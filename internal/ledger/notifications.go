package ledger

import (
	"slices"
	"strings"

	"github.com/andresuchdata/stockledger/internal/domain"
)

// Notify appends a notification that is not tied to a stock movement, such
// as a failure reported by the service layer.
func (l *Ledger) Notify(title, message string, kind domain.NotificationType, link string) domain.Notification {
	var out domain.Notification
	_ = l.mutate("notify", func(tx *txn) error {
		if kind == "" {
			kind = domain.NotificationInfo
		}
		out = tx.notify(strings.TrimSpace(title), message, kind, link)
		return nil
	})
	return out
}

func (l *Ledger) MarkNotificationRead(id string) error {
	const op = "mark_notification_read"
	return l.mutate(op, func(tx *txn) error {
		for i := range l.notifications {
			if l.notifications[i].ID == id {
				if !l.notifications[i].Read {
					l.notifications[i].Read = true
					tx.dirty = true
				}
				return nil
			}
		}
		return domain.Unknown(op, "notification", id)
	})
}

// MarkAllNotificationsRead returns how many notifications changed.
func (l *Ledger) MarkAllNotificationsRead() int {
	changed := 0
	_ = l.mutate("mark_all_notifications_read", func(tx *txn) error {
		for i := range l.notifications {
			if !l.notifications[i].Read {
				l.notifications[i].Read = true
				changed++
			}
		}
		tx.dirty = changed > 0
		return nil
	})
	return changed
}

func (l *Ledger) DeleteNotification(id string) error {
	const op = "delete_notification"
	return l.mutate(op, func(tx *txn) error {
		for i := range l.notifications {
			if l.notifications[i].ID == id {
				l.notifications = append(l.notifications[:i], l.notifications[i+1:]...)
				tx.dirty = true
				return nil
			}
		}
		return domain.Unknown(op, "notification", id)
	})
}

// DismissInsight hides a copilot insight by id. Dismissing twice changes
// nothing.
func (l *Ledger) DismissInsight(id string) error {
	const op = "dismiss_insight"
	id = strings.TrimSpace(id)
	return l.mutate(op, func(tx *txn) error {
		if id == "" {
			return domain.NewLedgerError(op, "insight", id, domain.ErrInvalidInput, "id is required")
		}
		if slices.Contains(l.dismissed, id) {
			return nil
		}
		l.dismissed = append(l.dismissed, id)
		tx.dirty = true
		return nil
	})
}

func (l *Ledger) DismissedInsights() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.dismissed)
}
