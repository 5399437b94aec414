package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pratik-mahalle/mediremind/internal/authflow"
	"github.com/pratik-mahalle/mediremind/internal/notify"
	"github.com/spf13/cobra"
)

// redirectWait bounds how long a command waits for the deferred
// navigation after a successful submission.
const redirectWait = 5 * time.Second

// navigator prints what to do next for the route the flow moved to.
type navigator struct {
	w io.Writer
}

func (n navigator) Navigate(route authflow.Route) {
	if hint := routeHint(route); hint != "" {
		fmt.Fprintln(n.w, hint)
	}
}

func routeHint(route authflow.Route) string {
	switch route {
	case authflow.RouteDashboard:
		return "You're signed in. Run 'mediremind auth whoami' to see your account."
	case authflow.RouteLogin:
		return "Run 'mediremind auth login' to sign in."
	case authflow.RouteRegister:
		return "Don't have an account? Run 'mediremind auth register'."
	case authflow.RouteForgotPassword:
		return "Forgot your password? Reset it from the MediRemind web app."
	default:
		return ""
	}
}

// newFlowConfig wires the flows to the terminal. Notifications go to
// stderr so --output json stays parseable.
func newFlowConfig(cmd *cobra.Command, sched authflow.Scheduler) authflow.Config {
	return authflow.Config{
		API:     apiClient,
		Session: authCtx,
		Notifier: notify.Multi{
			notify.NewConsole(cmd.ErrOrStderr()),
			notify.NewLog(log),
		},
		Navigator: navigator{w: cmd.ErrOrStderr()},
		Scheduler: sched,
		Logger:    log,
	}
}

// waitForRedirect lets the deferred navigation run before the process exits
func waitForRedirect(ctx context.Context, sched *authflow.TimerScheduler) error {
	ctx, cancel := context.WithTimeout(ctx, redirectWait)
	defer cancel()
	if err := sched.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for redirect: %w", err)
	}
	return nil
}
