// Package authflow implements the login and registration flows: it checks
// the form, calls the auth API, persists the session, notifies the user
// and schedules the follow-up navigation.
package authflow

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mediremind/internal/notify"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/session"
	"github.com/pratik-mahalle/mediremind/pkg/client"
)

// Delays before the follow-up navigation
const (
	LoginRedirectDelay    = 500 * time.Millisecond
	RegisterRedirectDelay = 1500 * time.Millisecond
)

// AuthAPI is the part of the API client the flows use.
// *client.Client implements it.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResponse, error)
}

var _ AuthAPI = (*client.Client)(nil)

// Config holds the collaborators of a flow. API is required; the login
// flow falls back to an in-memory session when Session is nil.
type Config struct {
	API       AuthAPI
	Session   *session.Context
	Notifier  notify.Notifier
	Navigator Navigator
	Scheduler Scheduler
	Logger    *logger.Logger
}

func (c Config) withDefaults() Config {
	if c.Notifier == nil {
		c.Notifier = notify.Discard
	}
	if c.Navigator == nil {
		c.Navigator = NavigatorFunc(func(Route) {})
	}
	if c.Scheduler == nil {
		c.Scheduler = NewTimerScheduler()
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return c
}
