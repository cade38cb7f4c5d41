package desktop

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod = notifyDest + ".Notify"

	// Milliseconds a notification stays on screen
	notifyTimeout = int32(5000)
)

// Level is the severity of a notice
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// urgency maps a level onto the freedesktop urgency hint (0 low, 1 normal, 2 critical)
func (l Level) urgency() byte {
	switch l {
	case LevelError:
		return 2
	default:
		return 1
	}
}

// Notifier shows a notice outside the terminal
type Notifier interface {
	Notify(ctx context.Context, level Level, summary, body string) error
}

// NopNotifier discards notices
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Level, string, string) error { return nil }

// DBusNotifier sends notices to the session notification daemon
type DBusNotifier struct {
	appName string
	mu      sync.Mutex
	conn    *dbus.Conn
}

// NewDBusNotifier opens a private session bus connection
func NewDBusNotifier(appName string) (*DBusNotifier, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	// Auth must be called after SessionBusPrivate
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session bus auth failed: %w", err)
	}

	// Hello completes the connection setup
	if err := conn.Hello(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session bus hello failed: %w", err)
	}

	return &DBusNotifier{appName: appName, conn: conn}, nil
}

func (n *DBusNotifier) Notify(ctx context.Context, level Level, summary, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(level.urgency()),
	}

	obj := n.conn.Object(notifyDest, notifyPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		n.appName, uint32(0), "", summary, body, []string{}, hints, notifyTimeout)
	if call.Err != nil {
		return fmt.Errorf("notify failed: %w", call.Err)
	}
	return nil
}

func (n *DBusNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn.Close() //nolint:wrapcheck // shutdown path
}
