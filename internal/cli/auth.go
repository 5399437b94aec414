package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pratik-mahalle/mediremind/internal/authflow"
	"github.com/pratik-mahalle/mediremind/pkg/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				email = promptInput(cmd, in, "Email: ")
			}
			if password == "" {
				password = promptPassword(cmd, in, "Password: ")
			}

			sched := authflow.NewTimerScheduler()
			flow := authflow.NewLoginFlow(newFlowConfig(cmd, sched))

			resp, err := flow.Submit(cmd.Context(), authflow.LoginForm{
				Email:    email,
				Password: password,
			})
			if err != nil {
				var ferr *authflow.Error
				if errors.As(err, &ferr) && ferr.Kind == authflow.KindServer {
					fmt.Fprintln(cmd.ErrOrStderr(), routeHint(authflow.RouteForgotPassword))
					fmt.Fprintln(cmd.ErrOrStderr(), routeHint(authflow.RouteRegister))
				}
				return &reportedError{err: err}
			}

			if err := waitForRedirect(cmd.Context(), sched); err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(cmd.OutOrStdout(), resp.User)
			}

			name := strings.TrimSpace(email)
			if resp.User != nil && resp.User.Name != "" {
				name = resp.User.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var name, email, phone, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new patient or caregiver account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if name == "" {
				name = promptInput(cmd, in, "Full name: ")
			}
			if email == "" {
				email = promptInput(cmd, in, "Email: ")
			}
			if phone == "" {
				phone = promptInput(cmd, in, "Phone: ")
			}
			if password == "" {
				password = promptPassword(cmd, in, fmt.Sprintf("Password (min %d characters): ", authflow.MinPasswordLength))
				confirm := promptPassword(cmd, in, "Confirm password: ")
				if password != confirm {
					return fmt.Errorf("passwords do not match")
				}
			}

			sched := authflow.NewTimerScheduler()
			flow := authflow.NewRegisterFlow(newFlowConfig(cmd, sched))

			resp, err := flow.Submit(cmd.Context(), authflow.RegisterForm{
				Name:     name,
				Email:    email,
				Password: password,
				Phone:    phone,
				Role:     client.Role(role),
			})
			if err != nil {
				return &reportedError{err: err}
			}

			if getOutputFormat() != "table" {
				if err := printOutput(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			}

			return waitForRedirect(cmd.Context(), sched)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", string(client.RolePatient), "account type: PATIENT or CAREGIVER")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !authCtx.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}

			// The local session is cleared even if the server is unreachable
			if err := apiClient.Logout(cmd.Context()); err != nil {
				log.WithError(err).Warn("server logout failed")
			}

			if err := authCtx.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show current user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := apiClient.GetCurrentUser(cmd.Context())
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
					return fmt.Errorf("session expired. Run 'mediremind auth login' again")
				}
				return fmt.Errorf("failed to get user info: %w", err)
			}

			out := cmd.OutOrStdout()
			if getOutputFormat() != "table" {
				return printOutput(out, user)
			}

			fmt.Fprintf(out, "Name:     %s\n", user.Name)
			fmt.Fprintf(out, "Email:    %s\n", user.Email)
			if user.Phone != "" {
				fmt.Fprintf(out, "Phone:    %s\n", user.Phone)
			}
			fmt.Fprintf(out, "Role:     %s\n", formatRole(user.Role))
			fmt.Fprintf(out, "ID:       %s\n", user.ID)
			return nil
		},
	}
}

func promptInput(cmd *cobra.Command, in *bufio.Reader, prompt string) string {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	input, _ := in.ReadString('\n')
	return strings.TrimSpace(input)
}

// promptPassword reads without echo when stdin is a terminal
func promptPassword(cmd *cobra.Command, in *bufio.Reader, prompt string) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return ""
		}
		return string(password)
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}
