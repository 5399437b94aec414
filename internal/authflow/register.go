package authflow

import (
	"context"
	"errors"
	"strings"

	"github.com/pratik-mahalle/mediremind/internal/notify"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/pkg/validator"
	"github.com/pratik-mahalle/mediremind/pkg/client"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// RegisterForm is the value bound to the registration inputs. An empty
// Role registers a patient.
type RegisterForm struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required"`
	Password string      `json:"password" validate:"required,min=6"`
	Phone    string      `json:"phone" validate:"required"`
	Role     client.Role `json:"role" validate:"oneof=PATIENT CAREGIVER"`
}

// RegisterFlow creates an account. It never logs the user in.
type RegisterFlow struct {
	api       AuthAPI
	notifier  notify.Notifier
	navigator Navigator
	scheduler Scheduler
	log       *logger.Logger
	validator *validator.Validator
	guard     *Guard
}

// NewRegisterFlow creates a registration flow. cfg.Session is not used.
func NewRegisterFlow(cfg Config) *RegisterFlow {
	cfg = cfg.withDefaults()
	return &RegisterFlow{
		api:       cfg.API,
		notifier:  cfg.Notifier,
		navigator: cfg.Navigator,
		scheduler: cfg.Scheduler,
		log:       cfg.Logger.With("flow", "register"),
		validator: validator.New(),
		guard:     NewGuard(),
	}
}

// Guard exposes the in-flight state of the flow
func (f *RegisterFlow) Guard() *Guard {
	return f.guard
}

// InFlight reports whether a submission is running
func (f *RegisterFlow) InFlight() bool {
	return f.guard.InFlight()
}

// Submit validates the form and creates the account. On success the user
// is notified and sent to the login route after RegisterRedirectDelay.
func (f *RegisterFlow) Submit(ctx context.Context, form RegisterForm) (*client.RegisterResponse, error) {
	if !f.guard.TryBegin() {
		return nil, ErrSubmissionInFlight
	}
	defer f.guard.End()

	form = normalize(form)
	if err := f.validator.Check(form); err != nil {
		return nil, f.fail(&Error{Kind: KindValidation, Message: firstViolation(err), Err: err})
	}

	f.log.Debugf("submitting registration for %s as %s", form.Email, form.Role)

	resp, err := f.api.Register(ctx, client.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Phone:    form.Phone,
		Role:     form.Role,
	})
	if err != nil {
		return nil, f.fail(classify(err, RegisterFailedMessage))
	}

	f.notifier.Notify(notify.Success(RegisterSuccessMessage))
	f.log.Infof("registration succeeded for %s", form.Email)

	f.scheduler.AfterFunc(RegisterRedirectDelay, func() {
		f.navigator.Navigate(RouteLogin)
	})

	return resp, nil
}

func (f *RegisterFlow) fail(e *Error) error {
	f.notifier.Notify(notify.Error(e.Message))
	f.log.WithFields(map[string]interface{}{
		"kind":   string(e.Kind),
		"status": e.StatusCode,
	}).WithError(e.Err).Warn("registration failed")
	return e
}

func normalize(form RegisterForm) RegisterForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Role = client.Role(strings.ToUpper(strings.TrimSpace(string(form.Role))))
	if form.Role == "" {
		form.Role = client.RolePatient
	}
	return form
}

func firstViolation(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Message
	}
	return err.Error()
}
