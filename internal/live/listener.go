package live

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/assoc-admin/internal/domain"
)

// Channel is the NOTIFY channel written by the notify_table_change trigger.
const Channel = "table_changes"

// Notifications is the part of pq.Listener the pump reads from.
type Notifications interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// Listen connects a pq.Listener to connStr and pumps table changes into
// hub until ctx is done.
func Listen(ctx context.Context, connStr string, hub *Hub) error {
	l := pq.NewListener(connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			hub.log.Warn("pg listener problem", "event", int(ev), "error", err)
		}
	})
	if err := l.Listen(Channel); err != nil {
		_ = l.Close()
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	hub.log.Info("listening for table changes", "channel", Channel)
	Pump(ctx, l, hub)
	return nil
}

// Pump forwards notifications to hub until ctx is done, then closes n.
// A nil notification means the connection was re-established; pages are
// told to refetch everything.
func Pump(ctx context.Context, n Notifications, hub *Hub) {
	defer n.Close()
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := n.Ping(); err != nil {
				hub.log.Warn("pg listener ping failed", "error", err)
			}
		case msg, ok := <-n.NotificationChannel():
			if !ok {
				return
			}
			if msg == nil {
				hub.Publish(domain.ChangeEvent{Table: "*", Action: "reconnect"})
				continue
			}
			ev, err := ParseEvent(msg.Extra)
			if err != nil {
				hub.log.Warn("bad change payload", "error", err)
				continue
			}
			hub.Publish(ev)
		}
	}
}

// ParseEvent decodes a trigger payload.
func ParseEvent(payload string) (domain.ChangeEvent, error) {
	var ev domain.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("decode change event: %w", err)
	}
	if ev.Table == "" {
		return ev, fmt.Errorf("change event without table")
	}
	ev.Action = strings.ToLower(ev.Action)
	return ev, nil
}
