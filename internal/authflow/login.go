package authflow

import (
	"context"
	"strings"

	"github.com/pratik-mahalle/mediremind/internal/notify"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/session"
	"github.com/pratik-mahalle/mediremind/pkg/client"
)

// LoginForm is the value bound to the login inputs
type LoginForm struct {
	Email    string
	Password string
}

// LoginFlow signs the user in and stores the session token.
type LoginFlow struct {
	api       AuthAPI
	session   *session.Context
	notifier  notify.Notifier
	navigator Navigator
	scheduler Scheduler
	log       *logger.Logger
	guard     *Guard
}

// NewLoginFlow creates a login flow. Without a Session the token is kept
// in memory for the lifetime of the flow.
func NewLoginFlow(cfg Config) *LoginFlow {
	cfg = cfg.withDefaults()
	if cfg.Session == nil {
		// A memory store never fails to load
		cfg.Session, _ = session.NewContext(context.Background(), session.NewMemoryStore())
	}
	return &LoginFlow{
		api:       cfg.API,
		session:   cfg.Session,
		notifier:  cfg.Notifier,
		navigator: cfg.Navigator,
		scheduler: cfg.Scheduler,
		log:       cfg.Logger.With("flow", "login"),
		guard:     NewGuard(),
	}
}

// Guard exposes the in-flight state of the flow
func (f *LoginFlow) Guard() *Guard {
	return f.guard
}

// InFlight reports whether a submission is running
func (f *LoginFlow) InFlight() bool {
	return f.guard.InFlight()
}

// Submit sends the credentials to the server. On success the token is
// persisted, the user is notified and, after LoginRedirectDelay, the auth
// state is refreshed and the dashboard is opened. Every failure is notified
// and returned as *Error, except ErrSubmissionInFlight.
func (f *LoginFlow) Submit(ctx context.Context, form LoginForm) (*client.AuthResponse, error) {
	if !f.guard.TryBegin() {
		return nil, ErrSubmissionInFlight
	}
	defer f.guard.End()

	email := strings.TrimSpace(form.Email)
	if email == "" || form.Password == "" {
		return nil, f.fail(&Error{Kind: KindValidation, Message: loginRequiredMessage})
	}

	f.log.Debugf("submitting login for %s", email)

	resp, err := f.api.Login(ctx, email, form.Password)
	if err != nil {
		return nil, f.fail(classify(err, LoginFailedMessage))
	}
	if resp == nil || resp.Token == "" {
		return nil, f.fail(&Error{Kind: KindServer, Message: LoginFailedMessage})
	}

	if err := f.session.SetToken(ctx, resp.Token); err != nil {
		return nil, f.fail(&Error{Kind: KindStorage, Message: sessionFailedMessage, Err: err})
	}

	f.notifier.Notify(notify.Success(LoginSuccessMessage))
	f.log.Infof("login succeeded for %s", email)

	// The redirect outlives the request context
	redirectCtx := context.WithoutCancel(ctx)
	f.scheduler.AfterFunc(LoginRedirectDelay, func() {
		if err := f.session.Invalidate(redirectCtx); err != nil {
			f.log.ErrorWithErr(err, "failed to refresh auth state")
		}
		f.navigator.Navigate(RouteDashboard)
	})

	return resp, nil
}

func (f *LoginFlow) fail(e *Error) error {
	f.notifier.Notify(notify.Error(e.Message))
	f.log.WithFields(map[string]interface{}{
		"kind":   string(e.Kind),
		"status": e.StatusCode,
	}).WithError(e.Err).Warn("login failed")
	return e
}
