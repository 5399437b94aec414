// Package notify delivers short user facing messages about the outcome of
// an action, the terminal counterpart of a toast.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single message shown to the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier delivers notifications
type Notifier interface {
	Notify(n Notification)
}

// Success builds a success notification
func Success(msg string) Notification {
	return Notification{Level: LevelSuccess, Message: msg}
}

// Error builds an error notification
func Error(msg string) Notification {
	return Notification{Level: LevelError, Message: msg}
}

// Console writes one line per notification to w.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console notifier
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(n Notification) {
	prefix := "[ok]"
	if n.Level == LevelError {
		prefix = "[error]"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", prefix, n.Message)
}

// Log records notifications in the structured log.
type Log struct {
	log *logger.Logger
}

// NewLog creates a notifier backed by log
func NewLog(log *logger.Logger) *Log {
	return &Log{log: log.With("component", "notify")}
}

func (l *Log) Notify(n Notification) {
	entry := l.log.With("level_hint", string(n.Level))
	if n.Level == LevelError {
		entry.Warn(n.Message)
		return
	}
	entry.Info(n.Message)
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Func adapts a function to Notifier
type Func func(Notification)

func (f Func) Notify(n Notification) {
	f(n)
}

// Discard drops every notification
var Discard Notifier = Func(func(Notification) {})
