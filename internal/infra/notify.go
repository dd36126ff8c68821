package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

const (
	notifyAppName = "netmenu"
	notifyAppIcon = "network-wireless"
	notifyTimeout = 3 * time.Second
)

// sendFunc delivers one notification to the desktop.
type sendFunc func(note notify.Notification) error

// DesktopNotifier implements domain.Notifier over the freedesktop notification
// service on the session bus.
type DesktopNotifier struct {
	enabled bool
	send    sendFunc
}

// NewNotifier creates a notifier; a disabled notifier silently drops messages.
func NewNotifier(enabled bool) *DesktopNotifier {
	return newNotifierWithSender(enabled, sendOverSessionBus)
}

func newNotifierWithSender(enabled bool, send sendFunc) *DesktopNotifier {
	return &DesktopNotifier{enabled: enabled, send: send}
}

// Notify shows summary/body as a desktop notification.
func (n *DesktopNotifier) Notify(summary, body string) error {
	if !n.enabled {
		return nil
	}
	note := notify.Notification{
		AppName:       notifyAppName,
		AppIcon:       notifyAppIcon,
		Summary:       summary,
		Body:          body,
		ExpireTimeout: notify.ExpireTimeoutSetByNotificationServer,
	}
	if err := n.send(note); err != nil {
		return fmt.Errorf("notify %q: %w", summary, err)
	}
	return nil
}

// sendOverSessionBus opens a private session bus connection per message; netmenu
// sends at most a couple per run. The connection is torn down after notifyTimeout.
func sendOverSessionBus(note notify.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	_, err = notify.SendNotification(conn, note)
	return err
}

// Ensure DesktopNotifier implements domain.Notifier.
var _ domain.Notifier = (*DesktopNotifier)(nil)
