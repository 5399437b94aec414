package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			info, infoErr := apiClient.Info(ctx)
			health, healthErr := apiClient.Health(ctx)

			if getOutputFormat() != "table" {
				summary := map[string]interface{}{
					"server":        apiClient.BaseURL(),
					"authenticated": authCtx.Authenticated(),
				}
				if infoErr == nil {
					summary["service"] = info.Service
					summary["status"] = info.Status
				} else {
					summary["status_error"] = infoErr.Error()
				}
				if healthErr == nil {
					summary["database"] = health.Database
				} else {
					summary["health_error"] = healthErr.Error()
				}
				return printOutput(out, summary)
			}

			fmt.Fprintln(out, "MediRemind Status")
			fmt.Fprintln(out, strings.Repeat("=", 40))
			fmt.Fprintf(out, "  Server:        %s\n", apiClient.BaseURL())

			if infoErr != nil {
				fmt.Fprintf(out, "  Service:       (error: %v)\n", infoErr)
			} else {
				fmt.Fprintf(out, "  Service:       %s %s\n", info.Service, formatStatus(info.Status))
			}

			if healthErr != nil {
				fmt.Fprintf(out, "  Database:      (error: %v)\n", healthErr)
			} else {
				fmt.Fprintf(out, "  Database:      %s\n", formatStatus(health.Database))
			}

			session := "not logged in"
			if authCtx.Authenticated() {
				session = "logged in"
			}
			fmt.Fprintf(out, "  Session:       %s\n", session)
			return nil
		},
	}
}
